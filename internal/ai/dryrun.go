package ai

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// DryRunProvider never contacts a service. It answers with a marker naming
// the prompt size so a whole batch can be exercised without a credential.
type DryRunProvider struct{}

// NewDryRunProvider returns a DryRunProvider.
func NewDryRunProvider() *DryRunProvider {
	return &DryRunProvider{}
}

// Complete returns a placeholder summary.
func (p *DryRunProvider) Complete(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("[dry run] prompt of %d characters was not sent", utf8.RuneCountInString(prompt)), nil
}
