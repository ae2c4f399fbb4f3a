// adminctl is the operator console for the cddiller backend: it provisions
// the first superadmin, checks who is signed in, and manages the local
// session file. It drives the same session manager the dashboard flow
// documents, against the real Supabase project and database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"

	"cddiller-backend/config"
	"cddiller-backend/internal/gateway/gotrue"
	"cddiller-backend/internal/repository/postgres"
	"cddiller-backend/internal/session"
	"cddiller-backend/pkg/database"
	"cddiller-backend/pkg/logger"
)

const usage = `Usage: adminctl <command> [flags]

Commands:
  create-superadmin  provision the first superadmin account
  login              sign in and persist the session locally
  whoami             show the current session's profile
  logout             revoke and clear the local session
`

// terminalNotifier prints operation outcomes to stderr, one line per
// notification.
type terminalNotifier struct{}

func (terminalNotifier) Notify(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init("adminctl")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	sessionPath, err := gotrue.DefaultSessionPath()
	if err != nil {
		log.Fatalf("Failed to resolve session path: %v", err)
	}
	creds := gotrue.NewClient(cfg.SupabaseUrl, cfg.SupabaseKey,
		gotrue.WithTokenStore(gotrue.NewFileTokenStore(sessionPath)))

	profiles := postgres.ProfileStoreAdapter{Repo: postgres.NewProfileRepository(dbPool)}

	mgr := session.NewManager(creds, profiles, terminalNotifier{}, logger.Log)
	defer mgr.Close()

	if err := mgr.Bootstrap(ctx); err != nil {
		log.Fatalf("Session bootstrap failed: %v", err)
	}

	var ok bool
	switch os.Args[1] {
	case "create-superadmin":
		ok = runCreateSuperadmin(ctx, mgr, os.Args[2:])
	case "login":
		ok = runLogin(ctx, mgr, os.Args[2:])
	case "whoami":
		ok = runWhoami(mgr)
	case "logout":
		mgr.Logout(ctx)
		ok = true
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if !ok {
		os.Exit(1)
	}
}

func runCreateSuperadmin(ctx context.Context, mgr *session.Manager, args []string) bool {
	fs := flag.NewFlagSet("create-superadmin", flag.ExitOnError)
	email := fs.String("email", "", "superadmin email")
	name := fs.String("name", "", "display name")
	fs.Parse(args)

	if *email == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "create-superadmin requires -email and -name")
		return false
	}

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
		return false
	}

	return mgr.CreateSuperadmin(ctx, *email, password, *name)
}

func runLogin(ctx context.Context, mgr *session.Manager, args []string) bool {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "login requires -email")
		return false
	}

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
		return false
	}

	if !mgr.Login(ctx, *email, password) {
		return false
	}

	cu := mgr.CurrentUser()
	fmt.Printf("Signed in as %s (%s)\n", cu.Profile.Name, cu.Profile.Role)
	fmt.Printf("Dashboard route: %s\n", cu.Profile.Role.LandingRoute())
	return true
}

func runWhoami(mgr *session.Manager) bool {
	cu := mgr.CurrentUser()
	if cu.Profile == nil {
		fmt.Println("Not signed in.")
		return false
	}
	fmt.Printf("ID:     %s\n", cu.Profile.ID)
	fmt.Printf("Name:   %s\n", cu.Profile.Name)
	fmt.Printf("Email:  %s\n", cu.Profile.Email)
	fmt.Printf("Role:   %s\n", cu.Profile.Role)
	fmt.Printf("Status: %s\n", cu.Profile.Status)
	return true
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
