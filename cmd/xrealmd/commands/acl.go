package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/crossrealm/xrealmd/internal/cli/output"
	"github.com/crossrealm/xrealmd/pkg/authz"
	"github.com/crossrealm/xrealmd/pkg/config"
	"github.com/spf13/cobra"
)

var grantCmd = &cobra.Command{
	Use:   "grant TGT_PRINCIPAL ACL",
	Short: "Grant cross-realm access on a TGT principal entry",
	Long: `Grant cross-realm access by setting an authorization attribute on a
cross-realm TGT principal's entry.

TGT_PRINCIPAL is the cross-realm ticket-granting principal as stored in
this realm's database, e.g. krbtgt/EAST.EXAMPLE.COM@WEST.EXAMPLE.COM
for clients arriving from WEST.EXAMPLE.COM.

ACL selects the scope of the grant:
  @REALM           allow every client from REALM
  name             allow one client from the directly trusted realm
  name@REALM       allow one client arriving transitively from REALM

Examples:
  # Allow all of WEST.EXAMPLE.COM
  xrealmd grant krbtgt/EAST.EXAMPLE.COM@WEST.EXAMPLE.COM @WEST.EXAMPLE.COM

  # Allow alice from the directly trusted realm
  xrealmd grant krbtgt/EAST.EXAMPLE.COM@WEST.EXAMPLE.COM alice

  # Allow bob arriving through WEST from FAR.EXAMPLE.COM
  xrealmd grant krbtgt/EAST.EXAMPLE.COM@WEST.EXAMPLE.COM bob@FAR.EXAMPLE.COM`,
	Args: cobra.ExactArgs(2),
	RunE: runGrant,
}

var revokeCmd = &cobra.Command{
	Use:   "revoke TGT_PRINCIPAL ACL",
	Short: "Revoke a cross-realm access grant",
	Long: `Revoke a cross-realm access grant by removing the corresponding
authorization attribute from the TGT principal's entry. ACL uses the
same forms as grant (@REALM, name, name@REALM). Revoking a grant that
does not exist is not an error.`,
	Args: cobra.ExactArgs(2),
	RunE: runRevoke,
}

var aclsCmd = &cobra.Command{
	Use:   "acls TGT_PRINCIPAL",
	Short: "List cross-realm access grants on a TGT principal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runACLs,
}

// aclKey derives the attribute key for an ACL spec: "@REALM" grants a
// whole realm, anything else a single principal.
func aclKey(spec string) (string, error) {
	if spec == "" {
		return "", fmt.Errorf("ACL must not be empty")
	}
	if strings.HasPrefix(spec, "@") {
		realm := spec[1:]
		if realm == "" {
			return "", fmt.Errorf("realm ACL %q names no realm", spec)
		}
		return authz.RealmAttributeKey(realm), nil
	}
	return authz.AttrPrefix + spec, nil
}

func runGrant(cmd *cobra.Command, args []string) error {
	key, err := aclKey(args[1])
	if err != nil {
		return err
	}

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

	principal := authz.ParsePrincipal(args[0])
	if err := store.SetString(cmd.Context(), principal, key, ""); err != nil {
		return fmt.Errorf("failed to grant %s on %s: %w", args[1], principal.String(), err)
	}

	fmt.Printf("Granted %s on %s\n", args[1], principal.String())
	return nil
}

func runRevoke(cmd *cobra.Command, args []string) error {
	key, err := aclKey(args[1])
	if err != nil {
		return err
	}

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

	principal := authz.ParsePrincipal(args[0])
	if err := store.DeleteString(cmd.Context(), principal, key); err != nil {
		return fmt.Errorf("failed to revoke %s on %s: %w", args[1], principal.String(), err)
	}

	fmt.Printf("Revoked %s on %s\n", args[1], principal.String())
	return nil
}

func runACLs(cmd *cobra.Command, args []string) error {
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

	principal := authz.ParsePrincipal(args[0])
	attrs, err := store.ListStrings(cmd.Context(), principal)
	if err != nil {
		return fmt.Errorf("failed to list grants on %s: %w", principal.String(), err)
	}

	var keys []string
	for k := range attrs {
		if strings.HasPrefix(k, authz.AttrPrefix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		fmt.Printf("No cross-realm grants on %s\n", principal.String())
		return nil
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		spec := strings.TrimPrefix(k, authz.AttrPrefix)
		rows = append(rows, []string{spec, aclScope(spec)})
	}
	output.PrintTable(os.Stdout, []string{"ACL", "Scope"}, rows)
	return nil
}

// aclScope describes the grant form for display.
func aclScope(spec string) string {
	switch {
	case strings.HasPrefix(spec, "@"):
		return "realm"
	case strings.Contains(spec, "@"):
		return "principal (transitive)"
	default:
		return "principal (direct)"
	}
}
