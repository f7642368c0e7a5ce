package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kapu/higapro-site/internal/config"
	"github.com/kapu/higapro-site/internal/domain"
	"github.com/kapu/higapro-site/internal/microcms"
	"github.com/kapu/higapro-site/internal/roster"
	"github.com/kapu/higapro-site/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

var (
	kindFlag  string
	debutFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cohorts",
	Short: "Inspect the debut cohorts of the CMS roster",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the cohorts of a roster",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the members shown for a cohort",
	Args:  cobra.NoArgs,
	RunE:  runMembers,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&kindFlag, "kind", "k", string(domain.KindTalent), "roster kind (talent|manager)")
	membersCmd.Flags().StringVarP(&debutFlag, "debut", "d", "", "cohort key YYYY-MM (default: earliest)")
	rootCmd.AddCommand(listCmd, membersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fetchRoster(ctx context.Context) ([]domain.Person, domain.Kind, error) {
	kind, ok := domain.ParseKind(kindFlag)
	if !ok {
		return nil, "", fmt.Errorf("unknown kind %q", kindFlag)
	}

	cfg, err := config.LoadContent()
	if err != nil {
		return nil, "", err
	}
	logger, err := util.NewLogger(cfg.Logging.Level, "")
	if err != nil {
		return nil, "", err
	}
	defer logger.Sync()

	client := microcms.NewClient(cfg.MicroCMS.BaseURL, cfg.MicroCMS.APIKey, logger,
		microcms.WithHTTPClient(&http.Client{Timeout: requestTimeout}))
	people, err := microcms.NewRepository(client, 0).Roster(ctx)
	if err != nil {
		logger.Error("failed to fetch roster", zap.Error(err))
		return nil, "", err
	}
	return domain.FilterKind(people, kind), kind, nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	people, kind, err := fetchRoster(ctx)
	if err != nil {
		return err
	}

	built, err := roster.Build(people, kind, roster.Selection{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tLABEL\tMEMBERS")
	for _, cohort := range built.Cohorts {
		fmt.Fprintf(w, "%s\t%s\t%d\n", cohort.Key, cohort.Label, len(roster.Members(people, cohort.Key)))
	}
	return w.Flush()
}

func runMembers(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	people, kind, err := fetchRoster(ctx)
	if err != nil {
		return err
	}

	sel := roster.Selection{Kind: kind}
	if cmd.Flags().Changed("debut") {
		sel.Debut = debutFlag
		sel.HasDebut = true
	}

	built, err := roster.Build(people, kind, sel)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "# %s %s\n", kind, built.Selected)
	fmt.Fprintln(w, "ID\tNAME\tFURIGANA\tIMAGE")
	for _, card := range built.Members {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", card.ID, card.Name, card.Furigana, card.ImageURL)
	}
	return w.Flush()
}
