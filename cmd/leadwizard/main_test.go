package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/leadwizard/internal/config"
	"github.com/mark3labs/leadwizard/internal/pricing"
	"github.com/mark3labs/leadwizard/internal/product"
	"github.com/mark3labs/leadwizard/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.Writer.Profile = colorprofile.Ascii
}

func TestLeadCommands_OnePerPurpose(t *testing.T) {
	cmds := leadCommands()
	require.Len(t, cmds, len(wizard.Purposes()))

	byName := map[string]bool{}
	for _, c := range cmds {
		byName[c.Name()] = c.Flags().Lookup("product") != nil
		assert.NotNil(t, c.Flags().Lookup("plain"))
		assert.NotNil(t, c.Flags().Lookup("agent"))
	}
	assert.True(t, byName["quote"], "quote offers --product")
	assert.True(t, byName["schedule"], "schedule offers --product")
	assert.False(t, byName["contact"], "contact has no product field")
}

func TestApplyLeadFlags(t *testing.T) {
	cfg := config.Default()
	applyLeadFlags(cfg, leadFlags{plain: true, agent: "Jane Doe", endpoint: "https://x.example", lang: "es"})

	assert.True(t, cfg.Plain)
	assert.Equal(t, "Jane Doe", cfg.Agent)
	assert.Equal(t, "https://x.example", cfg.Endpoint)
	assert.Equal(t, "es", cfg.Language)
}

func TestBuildMachine_UsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Agent = "Jane Doe"
	cfg.Pricing.Base[product.Life] = 80

	m, err := buildMachine(wizard.PurposeQuote, cfg)
	require.NoError(t, err)
	assert.Equal(t, "jane-doe", m.AgentSlug())
	assert.Equal(t, cfg.ResetDelay, m.ResetDelay())
}

func TestEstimateTable(t *testing.T) {
	out, err := estimateTable(pricing.DefaultTable(), []product.Product{product.Health}, true, 2)
	require.NoError(t, err)
	assert.Contains(t, out, "$625/mo")
	assert.Contains(t, out, "$350/mo")

	out, err = estimateTable(pricing.DefaultTable(), product.All(), false, 0)
	require.NoError(t, err)
	for _, want := range []string{"$50/mo", "$150/mo", "$350/mo"} {
		assert.Contains(t, out, want)
	}
}

func TestRunSetup_WritesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))

	setupFlags.project = true
	setupFlags.force = false
	setupFlags.endpoint = "https://leads.example.com"
	setupFlags.agent = ""
	setupFlags.siteKey = "site-123"
	t.Cleanup(func() {
		setupFlags.project = false
		setupFlags.endpoint = ""
		setupFlags.siteKey = ""
	})

	var out bytes.Buffer
	setupCmd.SetOut(&out)
	require.NoError(t, runSetup(setupCmd, nil))
	assert.Contains(t, out.String(), "leadwizard.yml")

	data, err := os.ReadFile(config.ProjectPath())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "site_key: site-123"))

	err = runSetup(setupCmd, nil)
	require.Error(t, err, "refuses to overwrite without --force")
}

func TestRenderLogo(t *testing.T) {
	logo := renderLogo()
	assert.Equal(t, 2, strings.Count(logo, "\n")+1)
}
