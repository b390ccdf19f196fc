package studio

import "time"

// Waits bounds each UI step.
type Waits struct {
	Navigation  time.Duration `json:"navigation" yaml:"navigation"`
	PromptBox   time.Duration `json:"prompt_box" yaml:"prompt_box"`
	RunButton   time.Duration `json:"run_button" yaml:"run_button"`
	AttachMenu  time.Duration `json:"attach_menu" yaml:"attach_menu"`
	Menu        time.Duration `json:"menu" yaml:"menu"`
	Options     time.Duration `json:"options" yaml:"options"`
	Clipboard   time.Duration `json:"clipboard" yaml:"clipboard"`
	ModelButton time.Duration `json:"model_button" yaml:"model_button"`
	Label       time.Duration `json:"label" yaml:"label"`
}

// DefaultWaits returns the standard step timeouts.
func DefaultWaits() Waits {
	return Waits{
		Navigation:  60 * time.Second,
		PromptBox:   15 * time.Second,
		RunButton:   5 * time.Second,
		AttachMenu:  20 * time.Second,
		Menu:        5 * time.Second,
		Options:     3 * time.Second,
		Clipboard:   200 * time.Millisecond,
		ModelButton: 30 * time.Second,
		Label:       5 * time.Second,
	}
}

func (w Waits) withDefaults() Waits {
	d := DefaultWaits()
	for _, f := range []struct{ v, def *time.Duration }{
		{&w.Navigation, &d.Navigation},
		{&w.PromptBox, &d.PromptBox},
		{&w.RunButton, &d.RunButton},
		{&w.AttachMenu, &d.AttachMenu},
		{&w.Menu, &d.Menu},
		{&w.Options, &d.Options},
		{&w.Clipboard, &d.Clipboard},
		{&w.ModelButton, &d.ModelButton},
		{&w.Label, &d.Label},
	} {
		if *f.v <= 0 {
			*f.v = *f.def
		}
	}
	return w
}
