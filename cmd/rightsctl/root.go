package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rightshare/client-sdk-go/services"
)

// assetFlags 资产定位参数
type assetFlags struct {
	contract     string
	tokenID      string
	baseContract string
	endTime      int64
}

type rootOptions struct {
	v          *viper.Viper
	configFile string
	password   string
	verbose    bool
	asset      assetFlags
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	services.Bind(opts.v)

	cmd := &cobra.Command{
		Use:           "rightsctl",
		Short:         "Estimate and submit Rights DAO transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("network", "", "network preset: mainnet or rinkeby")
	flags.String("endpoint", "", "node JSON-RPC endpoint")
	flags.String("protocol", "", "node protocol: http or websocket")
	flags.String("language", "", "narration language: en or zh")
	flags.String("keystore", "", "keystore directory")
	flags.String("account", "", "keystore account address")
	flags.StringVar(&opts.password, "password", "", "keystore password (or RIGHTSHARE_PASSWORD)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	flags.StringVar(&opts.asset.contract, "contract", "", "asset contract address")
	flags.StringVar(&opts.asset.tokenID, "token-id", "", "asset token id")
	flags.StringVar(&opts.asset.baseContract, "base-contract", "", "underlying NFT contract of an FRight/IRight")
	flags.Int64Var(&opts.asset.endTime, "end-time", 0, "rights end time (unix seconds) of an FRight/IRight")

	for key, flag := range map[string]string{
		"network":       "network",
		"node.endpoint": "endpoint",
		"node.protocol": "protocol",
		"language":      "language",
		"keystore":      "keystore",
		"account":       "account",
	} {
		_ = opts.v.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(
		newEstimateCmd(opts),
		newApproveCmd(opts),
		newFreezeCmd(opts),
		newSimpleCmd(opts, "unfreeze", "Burn the FRight and return the NFT", (*app).unfreeze),
		newSimpleCmd(opts, "issue", "Issue a new IRight from an FRight", (*app).issueI),
		newSimpleCmd(opts, "revoke", "Burn an IRight", (*app).revokeI),
		newTransferCmd(opts),
	)
	return cmd
}

// loadConfig 配置文件、环境变量与命令行参数依次覆盖
func (o *rootOptions) loadConfig() (*services.Config, error) {
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
		if err := o.v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return services.FromViper(o.v)
}
