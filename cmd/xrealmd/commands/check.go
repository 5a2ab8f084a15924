package commands

import (
	"fmt"
	"os"

	"github.com/crossrealm/xrealmd/pkg/authz"
	"github.com/crossrealm/xrealmd/pkg/config"
	"github.com/spf13/cobra"
)

var (
	checkClient  string
	checkTGT     string
	checkService string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a single authorization decision",
	Long: `Evaluate one cross-realm TGS authorization decision against the
configured policy and attribute store, then exit.

The check runs the same decision path as the server: pre-approved
realms, then the realm-scope and principal-scope attributes on the
cross-realm TGT principal's entry.

Examples:
  # Would alice@WEST.EXAMPLE.COM get a ticket for a service here?
  xrealmd check \
    --client alice@WEST.EXAMPLE.COM \
    --tgt krbtgt/EAST.EXAMPLE.COM@WEST.EXAMPLE.COM \
    --service host/server.east.example.com@EAST.EXAMPLE.COM

Exit status is 0 when the request is allowed, 1 when it is denied, and
2 when the decision could not be made (store failure).`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkClient, "client", "", "Authenticated client principal (name@REALM)")
	checkCmd.Flags().StringVar(&checkTGT, "tgt", "", "Cross-realm TGT principal (krbtgt/LOCAL@REMOTE)")
	checkCmd.Flags().StringVar(&checkService, "service", "", "Requested service principal (name@REALM)")
	_ = checkCmd.MarkFlagRequired("client")
	_ = checkCmd.MarkFlagRequired("tgt")
	_ = checkCmd.MarkFlagRequired("service")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open attribute store: %w", err)
	}
	defer func() { _ = store.Close() }()

	authzCfg := authz.Config{
		Enforcing:     cfg.Authz.Enforcing,
		AllowedRealms: cfg.Authz.AllowedRealms,
	}
	if err := authzCfg.Validate(); err != nil {
		return err
	}
	engine := authz.NewEngine(authzCfg, store)
	policy := authz.NewPolicy(engine)
	defer policy.Shutdown()

	ticket := authz.Ticket{
		Client: authz.ParsePrincipal(checkClient),
		Server: authz.ParsePrincipal(checkTGT),
	}
	request := authz.Request{Server: authz.ParsePrincipal(checkService)}

	result, err := policy.CheckTGS(cmd.Context(), ticket, request)
	if err != nil {
		PrintErr("decision failed: %v", err)
		os.Exit(2)
	}

	if result.Allow {
		fmt.Println("ALLOW")
		if result.Status != "" {
			fmt.Println(result.Status)
		}
		return nil
	}

	fmt.Println("DENY")
	if result.Status != "" {
		fmt.Println(result.Status)
	}
	os.Exit(1)
	return nil
}
