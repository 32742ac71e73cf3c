package load

import (
	"fmt"
	"os"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nfslabs/idmapd/cmd/util"
	"github.com/nfslabs/idmapd/lib/idmap"
	"github.com/nfslabs/idmapd/lib/logging"
)

var (
	LoadCmd = &cobra.Command{
		Use:     "load",
		Short:   "Bulk-load principal mappings from a configuration file",
		Long:    `Bulk-load principal mappings from a YAML file into the identity cache and print the resulting table statistics. The configuration can be set via command line flags or environment variables in the form IDMAPD_<flag> (e.g. IDMAPD_TIMEOUT=600).`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	util.SetupCacheFlags(LoadCmd)

	key := "file"
	LoadCmd.PersistentFlags().String(key, "idmap.yaml", util.WrapString("Path to the mapping file with 'users' and 'groups' blocks"))

	key = "domains"
	LoadCmd.PersistentFlags().String(key, "user,group", util.WrapString("Comma-separated list of domains to populate (user, group)"))

	key = "metrics"
	LoadCmd.PersistentFlags().Bool(key, false, util.WrapString("Additionally dump the cache counters in Prometheus text format"))
}

// initConfig reads in ENV variables if set.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("IDMAPD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func processConfig(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

func run(_ *cobra.Command, _ []string) error {
	logging.InitLoggers(viper.GetString("log-level"))

	cache := idmap.New(util.GetCacheConfig())
	path := viper.GetString("file")

	for _, raw := range strings.Split(viper.GetString("domains"), ",") {
		var domain idmap.Domain
		switch strings.TrimSpace(raw) {
		case "user":
			domain = idmap.DomainUser
		case "group":
			domain = idmap.DomainGroup
		default:
			return fmt.Errorf("unknown domain %q", raw)
		}

		if err := cache.Populate(path, domain); err != nil {
			return err
		}

		forward, reverse, err := cache.DomainStats(domain)
		if err != nil {
			return err
		}
		fmt.Println(forward.String())
		fmt.Println(reverse.String())
	}

	if viper.GetBool("metrics") {
		fmt.Println()
		metrics.WritePrometheus(os.Stdout, false)
	}

	return nil
}
