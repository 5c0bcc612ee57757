package c

// renderCmake renders <proj>.cmake: a target with the runtime sources
// plus the generated files and include dirs (spec §4.4.4).
func (gen *Generator) renderCmake() (string, error) {
	return gen.render("cmake.tpl", map[string]any{
		"Project": gen.Opts.Project,
		"Modes":   gen.Opts.modes(),
	})
}

func (gen *Generator) renderModeFiles(mode string, funcs []*Function, entryFns []*EntryFunction) (string, string, error) {
	c, err := gen.render("mode_c.tpl", map[string]any{
		"Project":   gen.Opts.Project,
		"Mode":      mode,
		"Functions": funcs,
		"Entries":   entryFns,
	})
	if err != nil {
		return "", "", err
	}
	h, err := gen.render("mode_h.tpl", map[string]any{
		"Project": gen.Opts.Project,
		"Mode":    mode,
		"Entries": entryFns,
	})
	if err != nil {
		return "", "", err
	}
	return c, h, nil
}
