// EcoSwap CLI
//
// Usage:
//
//	ecoswap analyze https://www.allrecipes.com/recipe/...
//	ecoswap ingredients --title "Chili" "1 lb beef" "1 cup rice"
//	ecoswap validate https://example.org/recipe
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"ecoswap/internal/app"
	"ecoswap/internal/core/recipe"
	"ecoswap/internal/infrastructure/config"
	"ecoswap/internal/pkg/common"
)

var (
	version = "dev"
	commit  = "none"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLI(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "ecoswap",
		Usage:     "Extract recipes and suggest plant-based substitutions",
		Version:   fmt.Sprintf("%s (commit: %s)", version, commit),
		Writer:    out,
		ErrWriter: os.Stderr,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"ECOSWAP_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   formatText,
				Usage:   "Output format (text, json)",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Skip the headless browser strategy",
			},
		},

		Commands: []*cli.Command{
			analyzeCommand(),
			ingredientsCommand(),
			validateCommand(),
			sitesCommand(),
			usageCommand(),
		},
	}
}

// withApp 依旗標載入設定、建立服務並在結束時釋放資源
func withApp(c *cli.Context, fn func(a *app.App) error) error {
	common.InitConsoleLogger(c.String("log-level"))

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.Bool("no-browser") {
		cfg.Scraper.BrowserEnabled = false
	}
	// 單次執行不需要跨呼叫快取
	cfg.Cache.Enabled = false

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

// =============================================================================
// ANALYZE COMMAND
// =============================================================================

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Extract a recipe from a URL and analyze it",
		ArgsUsage: "<url>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one recipe URL is required", 2)
			}
			return withApp(c, func(a *app.App) error {
				result, err := a.Recipe.AnalyzeURL(c.Context, c.Args().First())
				if err != nil {
					return describeError(err)
				}
				return printResult(c, result)
			})
		},
	}
}

// =============================================================================
// INGREDIENTS COMMAND
// =============================================================================

func ingredientsCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingredients",
		Usage:     "Analyze ingredient lines without fetching a page",
		ArgsUsage: "<line> [line...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: "Recipe title",
			},
			&cli.StringSliceFlag{
				Name:    "step",
				Aliases: []string{"s"},
				Usage:   "Instruction step (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(a *app.App) error {
				result, err := a.Recipe.AnalyzeIngredients(recipe.IngredientsRequest{
					Ingredients:  c.Args().Slice(),
					Title:        c.String("title"),
					Instructions: c.StringSlice("step"),
				})
				if err != nil {
					return describeError(err)
				}
				return printResult(c, result)
			})
		},
	}
}

// =============================================================================
// INFO COMMANDS
// =============================================================================

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check whether a URL can be analyzed",
		ArgsUsage: "<url>",
		Action: func(c *cli.Context) error {
			return withApp(c, func(a *app.App) error {
				v := a.Recipe.ValidateURL(c.Args().First())
				if isJSON(c) {
					return printJSON(c.App.Writer, v)
				}
				if v.Valid {
					fmt.Fprintf(c.App.Writer, "valid: %s\n", v.URL)
					return nil
				}
				fmt.Fprintf(c.App.Writer, "invalid: %s\n", v.Message)
				return cli.Exit("", 1)
			})
		},
	}
}

func sitesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sites",
		Usage: "List sites with dedicated selectors",
		Action: func(c *cli.Context) error {
			return withApp(c, func(a *app.App) error {
				sites := a.Recipe.SupportedSites()
				if isJSON(c) {
					return printJSON(c.App.Writer, sites)
				}
				for _, s := range sites.Sites {
					fmt.Fprintln(c.App.Writer, s)
				}
				fmt.Fprintln(c.App.Writer, sites.Note)
				return nil
			})
		},
	}
}

func usageCommand() *cli.Command {
	return &cli.Command{
		Name:  "usage",
		Usage: "Show generative extraction settings and limits",
		Action: func(c *cli.Context) error {
			return withApp(c, func(a *app.App) error {
				return printJSON(c.App.Writer, a.Recipe.Usage())
			})
		},
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func isJSON(c *cli.Context) bool {
	return strings.EqualFold(c.String("format"), formatJSON)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(c *cli.Context, r *recipe.AnalysisResult) error {
	if isJSON(c) {
		return printJSON(c.App.Writer, r)
	}

	w := c.App.Writer
	a := r.Analysis
	fmt.Fprintf(w, "%s\n", r.EcoSwappedRecipe.Title)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(r.EcoSwappedRecipe.Title)))
	if r.Recipe.ExtractionMethod != "" {
		fmt.Fprintf(w, "Extracted via: %s\n", r.Recipe.ExtractionMethod)
	}
	fmt.Fprintf(w, "Sustainability score: %d/100\n", a.SustainabilityScore)
	fmt.Fprintf(w, "Non-vegan ingredients: %d of %d\n", a.NonVeganCount, a.TotalIngredients)

	impact := r.EnvironmentalImpact
	fmt.Fprintf(w, "Carbon saved: %.1f kg CO2e | Water saved: %.0f L | Land saved: %.1f m2\n",
		impact.CarbonFootprintReduction, impact.WaterUsageReduction, impact.LandUseReduction)

	if len(a.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSwaps:")
		for _, s := range a.Suggestions {
			fmt.Fprintf(w, "  - %s -> %s (%s)\n", s.Original, s.Recommended, s.Ratio)
		}
	}

	if steps := r.EcoSwappedRecipe.Instructions; len(steps) > 0 {
		fmt.Fprintln(w, "\nInstructions:")
		for i, step := range steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}
	return nil
}

// describeError 只回傳使用者可讀的訊息
func describeError(err error) error {
	_, resp := common.NewErrorResponse(err, false)
	return fmt.Errorf("%s: %s", resp.Code, resp.Message)
}
