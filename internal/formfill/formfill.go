// Package formfill writes cached profile values into the lunch order form.
package formfill

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/messenger"
	"github.com/pathakanu/bendonHelper/internal/model"
)

// Field identifiers of the order form. The two opaque ids come from the form builder.
const (
	slackFieldID = "e873c5e4-eb8e-4029-8efe-20cb83071f41"
	staffFieldID = "d111470c-31c7-4280-89d6-acf60e38f53e"
)

// Target locates the inputs for one profile field.
type Target struct {
	Selector string
	// All fills every match instead of only the first one.
	All bool
}

// Selectors maps profile keys to their inputs on the order page.
var Selectors = map[string]Target{
	model.KeyLastname: {Selector: `input[autocomplete="family-name"]`},
	model.KeyEmail:    {Selector: `input[autocomplete="email"]`},
	model.KeySlackID:  {Selector: fmt.Sprintf(`input[id*="%s"], input[name*="%s"]`, slackFieldID, slackFieldID), All: true},
	model.KeyStaffID:  {Selector: fmt.Sprintf(`input[id*="%s"], input[name*="%s"]`, staffFieldID, staffFieldID), All: true},
}

// Response acknowledges a fill request.
type Response struct {
	Status string        `json:"status"`
	Filled model.Profile `json:"filled"`
}

// Bridge is the content script side of the fill_form action.
type Bridge struct {
	logger *log.Logger
}

// NewBridge creates a Bridge.
func NewBridge(logger *log.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// Fill writes every non-empty profile field into its inputs. Fields with no
// matching input are skipped.
func (b *Bridge) Fill(page *Page, profile model.Profile) Response {
	values := profile.Map()
	for _, key := range model.ProfileKeys {
		value := values[key]
		if value == "" {
			continue
		}
		target := Selectors[key]
		inputs := page.Inputs(target.Selector)
		if inputs.Length() == 0 {
			b.logger.Debug("no input on page", "field", key)
			continue
		}
		if !target.All {
			inputs = inputs.First()
		}
		for i := range inputs.Nodes {
			page.SetInputValue(inputs.Eq(i), value)
		}
	}
	return Response{Status: "success", Filled: profile}
}

// Attach registers the bridge for page on the messenger under target.
func (b *Bridge) Attach(bus *messenger.Bus, target string, page *Page) {
	bus.Listen(target, func(_ context.Context, msg messenger.Message) (any, bool, error) {
		if msg.Action != messenger.ActionFillForm {
			return nil, false, nil
		}
		var profile model.Profile
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &profile); err != nil {
				return nil, true, fmt.Errorf("decode fill_form payload: %w", err)
			}
		}
		b.logger.Info("received fill_form request", "target", target)
		return b.Fill(page, profile), true, nil
	})
}
