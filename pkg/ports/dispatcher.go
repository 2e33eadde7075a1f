package ports

import "context"

// Dispatcher performs scripted UI steps on behalf of the assistant.
// The host implements it for whatever surface renders the page.
type Dispatcher interface {
	// Click activates the element matched by selector.
	Click(ctx context.Context, selector string) error

	// Type enters text into the element matched by selector.
	// It may be called once per keystroke.
	Type(ctx context.Context, selector, text string) error
}
