package studio

import "strings"

// Selectors locate the chat UI's elements. Every field can be overridden
// from configuration when the UI changes.
type Selectors struct {
	AppURLPrefix string `json:"app_url_prefix" yaml:"app_url_prefix"`
	NewChatURL   string `json:"new_chat_url" yaml:"new_chat_url"`

	PromptPlaceholder string `json:"prompt_placeholder" yaml:"prompt_placeholder"`
	RunButton         string `json:"run_button" yaml:"run_button"`
	RunButtonText     string `json:"run_button_text" yaml:"run_button_text"`

	ChatTurn      string `json:"chat_turn" yaml:"chat_turn"`
	TextChunk     string `json:"text_chunk" yaml:"text_chunk"`
	OptionsButton string `json:"options_button" yaml:"options_button"`
	MenuItem      string `json:"menu_item" yaml:"menu_item"`
	MenuItemAlt   string `json:"menu_item_alt" yaml:"menu_item_alt"`
	CopyMarkdown  string `json:"copy_markdown" yaml:"copy_markdown"`
	CopyText      string `json:"copy_text" yaml:"copy_text"`

	AddMediaButton string `json:"add_media_button" yaml:"add_media_button"`
	UploadMenuText string `json:"upload_menu_text" yaml:"upload_menu_text"`
	ProgressBar    string `json:"progress_bar" yaml:"progress_bar"`

	ModelSelector       string `json:"model_selector" yaml:"model_selector"`
	ModelTitle          string `json:"model_title" yaml:"model_title"`
	ActiveModelLabel    string `json:"active_model_label" yaml:"active_model_label"`
	ActiveModelLabelAlt string `json:"active_model_label_alt" yaml:"active_model_label_alt"`
	FilterChip          string `json:"filter_chip" yaml:"filter_chip"`
	FilterChipText      string `json:"filter_chip_text" yaml:"filter_chip_text"`
	MenuPanel           string `json:"menu_panel" yaml:"menu_panel"`
	RunSettingsLabel    string `json:"run_settings_label" yaml:"run_settings_label"`
}

// DefaultSelectors returns selectors for the current AI Studio UI.
func DefaultSelectors() Selectors {
	return Selectors{
		AppURLPrefix: "aistudio.google.com/app",
		NewChatURL:   "https://aistudio.google.com/app/prompts/new_chat",

		PromptPlaceholder: "Start typing a prompt",
		RunButton:         "ms-run-button button",
		RunButtonText:     "Run",

		ChatTurn:      "ms-chat-turn",
		TextChunk:     "ms-text-chunk",
		OptionsButton: "button[aria-label='Open options']",
		MenuItem:      "button[role='menuitem']",
		MenuItemAlt:   "button.mat-mdc-menu-item",
		CopyMarkdown:  "Copy as markdown",
		CopyText:      "Copy as text",

		AddMediaButton: "[data-test-id='add-media-button']",
		UploadMenuText: "Upload a file",
		ProgressBar:    "mat-progress-bar",

		ModelSelector:       "ms-model-selector button",
		ModelTitle:          ".model-title-text",
		ActiveModelLabel:    "ms-model-selector button span.title",
		ActiveModelLabelAlt: activeModelPath,
		FilterChip:          "button.ms-button-filter-chip",
		FilterChipText:      "Gemini",
		MenuPanel:           "mat-mdc-menu-panel",
		RunSettingsLabel:    "Run settings",
	}
}

// activeModelPath is the full DOM path to the model label, used when the
// short selector stops matching.
const activeModelPath = "body > app-root > ms-app > div > div > div.layout-wrapper > div > span > " +
	"ms-prompt-renderer > ms-chunk-editor > ms-right-side-panel > div > ms-run-settings > " +
	"div.settings-items-wrapper > div > ms-prompt-run-settings-switcher > ms-prompt-run-settings > " +
	"div.settings-item.settings-model-selector > div > ms-model-selector > button > span.title"

// Merge returns s with every non-empty field of o applied on top.
func (s Selectors) Merge(o Selectors) Selectors {
	dst := s.fields()
	src := o.fields()
	for i := range dst {
		if *src[i] != "" {
			*dst[i] = *src[i]
		}
	}
	return s
}

func (s *Selectors) fields() []*string {
	return []*string{
		&s.AppURLPrefix, &s.NewChatURL,
		&s.PromptPlaceholder, &s.RunButton, &s.RunButtonText,
		&s.ChatTurn, &s.TextChunk, &s.OptionsButton, &s.MenuItem, &s.MenuItemAlt, &s.CopyMarkdown, &s.CopyText,
		&s.AddMediaButton, &s.UploadMenuText, &s.ProgressBar,
		&s.ModelSelector, &s.ModelTitle, &s.ActiveModelLabel, &s.ActiveModelLabelAlt,
		&s.FilterChip, &s.FilterChipText, &s.MenuPanel, &s.RunSettingsLabel,
	}
}

// promptBox is a CSS selector for the input whose placeholder contains
// PromptPlaceholder, ignoring case.
func (s Selectors) promptBox() string {
	return "[placeholder*=" + cssString(s.PromptPlaceholder) + " i]"
}

func cssString(v string) string {
	return `"` + cssEscaper.Replace(v) + `"`
}

var cssEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
