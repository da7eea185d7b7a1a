package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/leadwizard/internal/captcha"
	"github.com/mark3labs/leadwizard/internal/config"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/logger"
	"github.com/mark3labs/leadwizard/internal/product"
	"github.com/mark3labs/leadwizard/internal/prompt"
	"github.com/mark3labs/leadwizard/internal/submit"
	tuiwizard "github.com/mark3labs/leadwizard/internal/tui/wizard"
	"github.com/mark3labs/leadwizard/internal/wizard"
	"github.com/spf13/cobra"
)

type leadFlags struct {
	plain    bool
	agent    string
	product  string
	endpoint string
	lang     string
	keepOpen bool
}

var leadDocs = map[wizard.Purpose]struct{ short, long string }{
	wizard.PurposeQuote: {
		short: "Request an insurance quote",
		long: `Request an insurance quote in five steps: contact details, coverage,
household, contact preference and confirmation. An illustrative monthly
estimate is shown once a product is chosen.`,
	},
	wizard.PurposeSchedule: {
		short: "Book a consultation with an advisor",
		long:  `Book a consultation: contact details, product and preferred date and time.`,
	},
	wizard.PurposeJoin: {
		short: "Apply to join the agency as an agent",
		long:  `Apply to join the agency: contact details, licensing and experience.`,
	},
	wizard.PurposeContact: {
		short: "Send a general enquiry",
		long:  `Send a general enquiry with a subject and message.`,
	},
}

// leadCommands returns one command per wizard purpose.
func leadCommands() []*cobra.Command {
	var cmds []*cobra.Command
	for _, p := range wizard.Purposes() {
		cmds = append(cmds, newLeadCmd(p))
	}
	return cmds
}

func newLeadCmd(p wizard.Purpose) *cobra.Command {
	var flags leadFlags
	doc := leadDocs[p]

	cmd := &cobra.Command{
		Use:   string(p),
		Short: doc.short,
		Long:  doc.long,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLead(cmd, p, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.plain, "plain", false, "Ask questions line by line instead of the full-screen UI")
	cmd.Flags().StringVarP(&flags.agent, "agent", "a", "", "Agent display name for micro-site leads")
	cmd.Flags().StringVarP(&flags.endpoint, "endpoint", "e", "", "Base URL of the lead intake service")
	cmd.Flags().StringVarP(&flags.lang, "lang", "l", "", "Language sent with the lead (en, es)")
	cmd.Flags().BoolVar(&flags.keepOpen, "keep-open", false, "Keep the wizard open after a successful submission")
	if def, err := wizard.Lookup(p); err == nil && hasField(def, form.InsuranceType) {
		cmd.Flags().StringVarP(&flags.product, "product", "p", "", "Pre-select a product ("+strings.Join(product.Names(), ", ")+")")
	}
	return cmd
}

func runLead(cmd *cobra.Command, p wizard.Purpose, flags leadFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLeadFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Default.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}

	machine, err := buildMachine(p, cfg)
	if err != nil {
		return err
	}

	var prefill *product.Product
	if flags.product != "" {
		parsed, err := product.Parse(flags.product)
		if err != nil {
			return err
		}
		prefill = &parsed
	}

	client := submit.NewClient(cfg.Endpoint, submit.WithTimeout(cfg.Timeout))
	widget := captcha.NewTokenWidget(cfg.Captcha.SiteKey, cfg.Captcha.TTL)
	defer func() { _ = widget.Close() }()

	logger.Info("starting %s wizard (endpoint %s)", p, cfg.Endpoint)

	if cfg.Plain {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := prompt.NewRunner(machine, prompt.NewSurveyDriver(), client, widget)
		runner.ChallengeURL = cfg.Captcha.ChallengeURL
		if prefill != nil {
			runner.Prefill(1, form.InsuranceType, form.String(string(*prefill)))
		}
		return runner.Run(ctx)
	}

	model := tuiwizard.New(machine, tuiwizard.Options{
		Submitter:       client,
		Widget:          widget,
		ChallengeURL:    cfg.Captcha.ChallengeURL,
		ExitAfterSubmit: !flags.keepOpen,
	})
	if prefill != nil {
		model.Prefill(1, form.InsuranceType, form.String(string(*prefill)))
	}

	result, err := model.Run()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case result.Submissions > 0:
		_, _ = fmt.Fprintln(out, machine.Definition().Confirmation)
	case result.Cancelled:
		_, _ = fmt.Fprintln(out, "Cancelled.")
	}
	return nil
}

func applyLeadFlags(cfg *config.Config, flags leadFlags) {
	if flags.plain {
		cfg.Plain = true
	}
	if flags.agent != "" {
		cfg.Agent = flags.agent
	}
	if flags.endpoint != "" {
		cfg.Endpoint = flags.endpoint
	}
	if flags.lang != "" {
		cfg.Language = flags.lang
	}
}

func buildMachine(p wizard.Purpose, cfg *config.Config) (*wizard.Machine, error) {
	def, err := wizard.Lookup(p)
	if err != nil {
		return nil, err
	}
	opts := []wizard.Option{
		wizard.WithPricing(cfg.Pricing),
		wizard.WithResetDelay(cfg.ResetDelay),
		wizard.WithLanguage(cfg.Language),
	}
	if cfg.Agent != "" {
		opts = append(opts, wizard.WithAgent(cfg.Agent))
	}
	return wizard.New(def, opts...)
}

func hasField(def wizard.Definition, name string) bool {
	for _, f := range def.PayloadFields() {
		if f == name {
			return true
		}
	}
	return false
}
