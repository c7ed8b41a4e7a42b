package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"cofounder/pkg/api"
	"cofounder/pkg/chatclient"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your founder profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print your founder profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := commandContext(cmd.Context())
		defer cancel()
		p, err := fetchProfile(ctx, a.client)
		if err != nil {
			return err
		}
		writeProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var profileFields = struct {
	name, company, stage, industry, goals, bio string
}{}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields; unset flags keep their current value",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := commandContext(cmd.Context())
		defer cancel()
		p, err := fetchProfile(ctx, a.client)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		set := func(name string, dst *string, v string) {
			if flags.Changed(name) {
				*dst = v
			}
		}
		set("name", &p.DisplayName, profileFields.name)
		set("company", &p.CompanyName, profileFields.company)
		set("stage", &p.StartupStage, profileFields.stage)
		set("industry", &p.Industry, profileFields.industry)
		set("goals", &p.Goals, profileFields.goals)
		set("bio", &p.Bio, profileFields.bio)
		if p.StartupStage == "" {
			p.StartupStage = profileFields.stage
		}

		saved, err := a.client.SaveProfile(ctx, *p)
		if err != nil {
			return err
		}
		writeProfile(cmd.OutOrStdout(), saved)
		return nil
	},
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileFields.name, "name", "", "Display name")
	f.StringVar(&profileFields.company, "company", "", "Company name")
	f.StringVar(&profileFields.stage, "stage", "idea", "Startup stage: idea, mvp, early_traction, growth or scaling")
	f.StringVar(&profileFields.industry, "industry", "", "Industry")
	f.StringVar(&profileFields.goals, "goals", "", "Current goals")
	f.StringVar(&profileFields.bio, "bio", "", "Short bio")

	profileCmd.AddCommand(profileShowCmd, profileSetCmd)
}

type profileClient interface {
	Profile(ctx context.Context) (*api.Profile, error)
}

// fetchProfile returns the saved profile, or an empty one when none exists yet.
func fetchProfile(ctx context.Context, c profileClient) (*api.Profile, error) {
	p, err := c.Profile(ctx)
	var apiErr *chatclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return &api.Profile{}, nil
	}
	return p, err
}

func writeProfile(w io.Writer, p *api.Profile) {
	rows := []struct{ label, value string }{
		{"Name", p.DisplayName},
		{"Company", p.CompanyName},
		{"Stage", p.StartupStage},
		{"Industry", p.Industry},
		{"Goals", p.Goals},
		{"Bio", p.Bio},
	}
	for _, r := range rows {
		v := r.value
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(w, "%-9s %s\n", r.label+":", v)
	}
}
