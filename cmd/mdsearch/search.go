package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/app"
	"github.com/kailas-cloud/mdsearch/internal/auth"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/mdsearch/internal/logger"
	searchuc "github.com/kailas-cloud/mdsearch/internal/usecase/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the outcome as JSON",
	Long: `Run one search against the current index snapshot.

Examples:
  mdsearch search --param any=water --param from=1 --param to=20
  mdsearch search --param topicCat=inlandWaters --token "$JWT"
  mdsearch search --query query.json --language fre`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringArrayP("param", "p", nil, "request parameter as name=value (repeatable)")
	searchCmd.Flags().String("query", "", "JSON query description file replacing the generated query")
	searchCmd.Flags().String("token", "", "session JWT (default: anonymous)")
	searchCmd.Flags().String("language", "", "context language of the caller")
	searchCmd.Flags().String("result-type", searchuc.DefaultResultType, "facet summary configuration to use")
	searchCmd.Flags().Int64("last-version", 0, "minimum acceptable snapshot version")
}

func runSearch(cmd *cobra.Command, _ []string) error {
	params, _ := cmd.Flags().GetStringArray("param")
	queryFile, _ := cmd.Flags().GetString("query")
	token, _ := cmd.Flags().GetString("token")
	language, _ := cmd.Flags().GetString("language")
	resultType, _ := cmd.Flags().GetString("result-type")
	lastVersion, _ := cmd.Flags().GetInt64("last-version")

	req, err := parseParams(params)
	if err != nil {
		return err
	}
	var desc *query.Description
	if queryFile != "" {
		if desc, err = readDescription(queryFile); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sess, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience).Session(token)
	if err != nil {
		return err
	}

	logger, ctx, err := newLogger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Search.Search(ctx, searchuc.Input{
		Request:         req,
		Query:           desc,
		Session:         sess,
		ContextLanguage: language,
		LastVersion:     lastVersion,
		Config: searchuc.ServiceConfig{
			ResultType: resultType,
			GUIService: cfg.SearchLog.GUIService,
		},
	})
	if err != nil {
		logpkg.FromContext(ctx).Debug("search failed", zap.Error(err))
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// parseParams builds a request from name=value pairs. Repeated names
// accumulate values.
func parseParams(pairs []string) (*request.Request, error) {
	req := request.New()
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: want name=value", p)
		}
		req.Add(name, value)
	}
	return req, nil
}

func readDescription(path string) (*query.Description, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read query: %w", err)
	}
	var d query.Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse query %s: %w", path, err)
	}
	return &d, nil
}
