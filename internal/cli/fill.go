package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pathakanu/bendonHelper/internal/formfill"
	"github.com/pathakanu/bendonHelper/internal/i18n"
	"github.com/pathakanu/bendonHelper/internal/messenger"
	"github.com/pathakanu/bendonHelper/internal/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// pageTarget is the messenger context of the page being filled.
const pageTarget = "tab:active"

var fillCmd = &cobra.Command{
	Use:   "fill PAGE.html",
	Short: "Fill the lunch order form with your saved profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runFill,
}

func init() {
	fillCmd.Flags().StringP("out", "o", "", "Write the filled page here instead of stdout")
}

func runFill(cmd *cobra.Command, args []string) error {
	api := apiFor(cmd)
	profile, err := api.profile(cmd.Context())
	if err != nil {
		pterm.Error.Println("Could not reach the Bendon Helper server.")
		return err
	}
	locale := ""
	if cfg, err := api.settings(cmd.Context()); err == nil {
		locale = cfg.Locale
	}

	out := io.Writer(os.Stdout)
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	logger := log.New(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	resp, err := fillPage(cmd.Context(), args[0], profile, out, logger)
	if errors.Is(err, messenger.ErrNoReceiver) {
		pterm.Error.Println(i18n.Resolve(locale).FillRefresh)
		return err
	}
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Filled: lastname=%q email=%q slackId=%q staffId=%q",
		resp.Filled.Lastname, resp.Filled.Email, resp.Filled.SlackID, resp.Filled.StaffID)
	return nil
}

// fillPage sends fill_form to the content script of the page at path and
// writes the filled document to out. A page that cannot be loaded has no
// content script, so the send fails with messenger.ErrNoReceiver.
func fillPage(ctx context.Context, path string, profile model.Profile, out io.Writer, logger *log.Logger) (formfill.Response, error) {
	bus := messenger.NewBus(logger)

	var page *formfill.Page
	if f, err := os.Open(path); err != nil {
		logger.Warn("page not available", "path", path, "err", err)
	} else {
		page, err = formfill.LoadPage(f)
		f.Close()
		if err != nil {
			logger.Warn("page not loaded", "path", path, "err", err)
		} else {
			formfill.NewBridge(logger).Attach(bus, pageTarget, page)
		}
	}

	msg, err := messenger.NewMessage(messenger.ActionFillForm, profile)
	if err != nil {
		return formfill.Response{}, err
	}
	raw, err := bus.Send(ctx, pageTarget, msg)
	if err != nil {
		return formfill.Response{}, err
	}
	resp, ok := raw.(formfill.Response)
	if !ok {
		return formfill.Response{}, fmt.Errorf("unexpected fill_form response %T", raw)
	}

	html, err := page.HTML()
	if err != nil {
		return resp, err
	}
	_, err = io.WriteString(out, html)
	return resp, err
}
