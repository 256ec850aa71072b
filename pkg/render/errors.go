package render

import "github.com/goliatone/go-formbind/pkg/messages"

// ResolveMessages returns the validation messages exported as errors for one
// render, localized for the requested locale. roots lists the form's field
// names so payload paths outside the form become global messages.
func ResolveMessages(opts RenderOptions, roots ...string) *messages.Messages {
	msgs := opts.Errors
	if msgs == nil {
		msgs = messages.FromPayload(opts.ErrorPayload, roots...)
	}
	msgs.Localize(opts.Locale, opts.Translator, opts.OnMissing)
	return msgs
}
