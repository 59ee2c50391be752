package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hubgoodfood/freshchat/catalog"
	"github.com/hubgoodfood/freshchat/engine"
	"github.com/hubgoodfood/freshchat/internal/profile"
	"github.com/hubgoodfood/freshchat/internal/version"
	"github.com/hubgoodfood/freshchat/metrics"
)

var rootCmd = &cobra.Command{
	Use:     "freshchat",
	Short:   `A fuzzy intent and product-matching engine for retail chat assistants.`,
	Version: version.StringFull(),
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env from the current directory (ignore error if
		// the file doesn't exist).
		_ = godotenv.Load()
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			ConfigFile:  viper.GetString("config"),
			CatalogFile: viper.GetString("catalog"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Version:     version.String(),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}
		setupLogger(instanceProfile)

		cfg := engine.DefaultConfig()
		if instanceProfile.ConfigFile != "" {
			if err := loadEngineConfig(instanceProfile.ConfigFile, &cfg); err != nil {
				slog.Error("failed to load engine config", "file", instanceProfile.ConfigFile, "error", err)
				return err
			}
		}

		cat, err := loadCatalog(instanceProfile.CatalogFile)
		if err != nil {
			slog.Error("failed to load catalog", "file", instanceProfile.CatalogFile, "error", err)
			return err
		}

		exporter := metrics.NewExporter()
		eng, err := engine.New(cfg, cat, engine.WithMetrics(exporter))
		if err != nil {
			return err
		}

		if instanceProfile.Addr != "" || !instanceProfile.IsDev() {
			go serveMetrics(instanceProfile, exporter)
		}

		printGreetings(instanceProfile, cat.Len())
		return runREPL(eng)
	},
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("port", 9108)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of service, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("config", "", "path to the engine YAML configuration")
	rootCmd.PersistentFlags().String("catalog", "", "path to the product catalog YAML file")
	rootCmd.PersistentFlags().String("addr", "", "metrics listen address")
	rootCmd.PersistentFlags().Int("port", 9108, "metrics listen port")

	for _, flag := range []string{"mode", "config", "catalog", "addr", "port"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("freshchat")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func setupLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadEngineConfig overlays the YAML file onto the defaults. A config may
// declare min_app_version to refuse running under an older binary.
func loadEngineConfig(path string, cfg *engine.Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	if minVersion := v.GetString("min_app_version"); minVersion != "" {
		if !version.IsVersionGreaterOrEqualThan(version.Version, minVersion) {
			return errors.Errorf("config %s requires app version >= %s, running %s", path, minVersion, version.Version)
		}
	}
	return v.Unmarshal(cfg)
}

// entrySpec mirrors one catalog entry in the YAML file.
type entrySpec struct {
	Name          string   `mapstructure:"name"`
	Specification string   `mapstructure:"specification"`
	Price         float64  `mapstructure:"price"`
	Unit          string   `mapstructure:"unit"`
	Category      string   `mapstructure:"category"`
	Keywords      []string `mapstructure:"keywords"`
	Description   string   `mapstructure:"description"`
	Taste         string   `mapstructure:"taste"`
	Origin        string   `mapstructure:"origin"`
	IsSeasonal    bool     `mapstructure:"is_seasonal"`
}

// loadCatalog reads the catalog file, or falls back to a small built-in
// demo set when no file is given.
func loadCatalog(path string) (*catalog.Catalog, error) {
	specs := demoEntries()
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		specs = nil
		if err := v.UnmarshalKey("products", &specs); err != nil {
			return nil, err
		}
	}

	entries := make([]*catalog.Entry, 0, len(specs))
	for _, s := range specs {
		displayName := catalog.DisplayNameFor(s.Name, s.Specification, s.Unit)
		entries = append(entries, &catalog.Entry{
			Key:           catalog.KeyFor(displayName),
			DisplayName:   displayName,
			Name:          s.Name,
			Specification: s.Specification,
			Price:         s.Price,
			Unit:          s.Unit,
			Category:      s.Category,
			Keywords:      s.Keywords,
			Description:   s.Description,
			Taste:         s.Taste,
			Origin:        s.Origin,
			IsSeasonal:    s.IsSeasonal,
		})
	}
	return catalog.New(entries)
}

func demoEntries() []entrySpec {
	return []entrySpec{
		{Name: "草莓", Specification: "约500g", Price: 25, Unit: "盒", Category: "时令水果", Keywords: []string{"新鲜", "甜"}, IsSeasonal: true},
		{Name: "台湾香瓜", Specification: "2-3个", Price: 18, Unit: "斤", Category: "时令水果", Keywords: []string{"香甜"}},
		{Name: "韩国香瓜", Specification: "3-4个", Price: 22, Unit: "斤", Category: "时令水果", Keywords: []string{"脆甜"}},
		{Name: "上海青", Specification: "约300g", Price: 6, Unit: "份", Category: "新鲜蔬菜", Keywords: []string{"绿叶菜"}},
		{Name: "鸡蛋", Specification: "30枚", Price: 28, Unit: "板", Category: "禽蛋", Keywords: []string{"土鸡蛋"}},
	}
}

func serveMetrics(p *profile.Profile, exporter *metrics.Exporter) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter.Handler())
	addr := net.JoinHostPort(p.Addr, strconv.Itoa(p.Port))
	slog.Info("metrics listener started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics listener stopped", "error", err)
	}
}

// runREPL resolves stdin lines interactively until EOF.
func runREPL(eng *engine.Engine) error {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Type a customer message (Ctrl-D to quit):")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		res, err := eng.Resolve(ctx, scanner.Text(), "repl-user")
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResult(res)
	}
	return scanner.Err()
}

func printResult(res *engine.Result) {
	switch res.Kind {
	case engine.ResultAnswer:
		if res.Entry != nil {
			fmt.Printf("[%s] %s  ¥%.2f/%s\n", res.Intent, res.Entry.DisplayName, res.Entry.Price, res.Entry.Unit)
			if res.Quantity > 1 {
				fmt.Printf("  x%d = ¥%.2f\n", res.Quantity, float64(res.Quantity)*res.Entry.Price)
			}
		} else {
			fmt.Printf("[%s]\n", res.Intent)
		}
		for _, s := range res.Suggestions {
			fmt.Printf("  suggestion: %s\n", s.DisplayName)
		}
	case engine.ResultClarify:
		fmt.Println("Which one do you mean?")
		for i, opt := range res.Options {
			fmt.Printf("  %d. %s\n", i+1, opt.DisplayText)
		}
	default:
		fmt.Printf("[fallback] intent=%s query=%q\n", res.Intent, res.RewrittenQuery)
	}
}

func printGreetings(p *profile.Profile, entries int) {
	fmt.Printf("FreshChat %s started successfully!\n", p.Version)
	if p.IsDev() {
		fmt.Fprintln(os.Stderr, "Development mode is enabled")
	}
	fmt.Printf("Mode: %s\n", p.Mode)
	fmt.Printf("Catalog entries: %d\n", entries)
	if p.Addr != "" || !p.IsDev() {
		fmt.Printf("Metrics: http://%s/metrics\n", net.JoinHostPort(p.Addr, strconv.Itoa(p.Port)))
	}
	fmt.Println()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
