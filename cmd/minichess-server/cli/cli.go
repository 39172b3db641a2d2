// Package cli implements the "db" maintenance subcommands of the server.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"minichess/internal/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"golang.org/x/term"
)

const minPasswordLength = 8

// out receives command output
var out io.Writer = os.Stdout

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, user")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	case "user":
		if len(args) < 2 {
			return fmt.Errorf("user subcommand required: add, delete, set-password, list")
		}
		return runUser(args[1], args[2:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// openStore parses the shared -path flag plus any extras and opens the store
func openStore(fs *flag.FlagSet, args []string) (*storage.Store, error) {
	path := fs.String("path", "", "Database file path (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", fs.Lookup("path").Value)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", fs.Lookup("path").Value)
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	playerID := fs.String("playerId", "", "Player ID to filter (optional, * for all)")
	moves := fs.Bool("moves", false, "Also list the moves of each game")

	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tVariant\tWhite Player\tBlack Player\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s (T%d)\t%s (T%d)\t%s\n",
			short(g.GameID),
			g.Variant,
			short(g.WhitePlayerID), g.WhiteType,
			short(g.BlackPlayerID), g.BlackType,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	if *moves {
		for _, g := range games {
			if err := printMoves(store, g.GameID); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func printMoves(store *storage.Store, gameID string) error {
	records, err := store.QueryMoves(gameID)
	if err != nil {
		return fmt.Errorf("move query failed: %w", err)
	}

	fmt.Fprintf(out, "\nMoves of %s:\n", gameID)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSide\tMove\tScore\tDepth\tNodes")
	for _, m := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n", m.MoveNumber, m.PlayerColor, m.Move, m.Score, m.Depth, m.Nodes)
	}
	return w.Flush()
}

func runUser(subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return runUserAdd(args)
	case "delete":
		return runUserDelete(args)
	case "set-password":
		return runUserSetPassword(args)
	case "list":
		return runUserList(args)
	default:
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

// readPassword prompts on the terminal without echo
func readPassword(prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	pwBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pwBytes), nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func runUserAdd(args []string) error {
	fs := flag.NewFlagSet("user add", flag.ContinueOnError)
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email address (optional)")
	password := fs.String("password", "", "Password")
	hash := fs.String("hash", "", "Pre-computed PHC password hash")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")

	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *username == "" {
		return fmt.Errorf("username required")
	}

	var passwordHash string
	switch {
	case *interactive && (*password != "" || *hash != ""):
		return fmt.Errorf("cannot use -interactive with -password or -hash")
	case *password != "" && *hash != "":
		return fmt.Errorf("cannot specify both -password and -hash")
	case *interactive:
		pw, err := readPassword("Enter password: ")
		if err != nil {
			return err
		}
		if passwordHash, err = hashPassword(pw); err != nil {
			return err
		}
	case *hash != "":
		if err := auth.ValidatePHCHashFormat(*hash); err != nil {
			return fmt.Errorf("invalid hash format: %w", err)
		}
		passwordHash = *hash
	case *password != "":
		if passwordHash, err = hashPassword(*password); err != nil {
			return err
		}
	default:
		return fmt.Errorf("password required: use -password, -hash, or -interactive")
	}

	var userID string
	for attempts := 0; ; attempts++ {
		if attempts == 10 {
			return fmt.Errorf("failed to generate unique user ID after 10 attempts")
		}
		userID = uuid.New().String()
		if _, err := store.GetUserByID(userID); err != nil {
			break
		}
	}

	record := storage.UserRecord{
		UserID:       userID,
		Username:     strings.ToLower(*username),
		Email:        strings.ToLower(*email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := store.CreateUser(record); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(out, "User created successfully:\n")
	fmt.Fprintf(out, "  ID: %s\n", userID)
	fmt.Fprintf(out, "  Username: %s\n", record.Username)
	if record.Email != "" {
		fmt.Fprintf(out, "  Email: %s\n", record.Email)
	}
	return nil
}

func runUserDelete(args []string) error {
	fs := flag.NewFlagSet("user delete", flag.ContinueOnError)
	username := fs.String("username", "", "Username to delete")
	userID := fs.String("id", "", "User ID to delete")

	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if (*username == "") == (*userID == "") {
		return fmt.Errorf("specify exactly one of -username or -id")
	}

	targetID := *userID
	if targetID == "" {
		user, err := store.GetUserByUsername(strings.ToLower(*username))
		if err != nil {
			return fmt.Errorf("user not found: %s", *username)
		}
		targetID = user.UserID
	}

	if err := store.DeleteUserByID(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Fprintf(out, "User deleted: %s\n", targetID)
	return nil
}

func runUserSetPassword(args []string) error {
	fs := flag.NewFlagSet("user set-password", flag.ContinueOnError)
	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "New password")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")

	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *username == "" {
		return fmt.Errorf("username required")
	}

	newPassword := *password
	switch {
	case *interactive && *password != "":
		return fmt.Errorf("cannot use -interactive with -password")
	case *interactive:
		if newPassword, err = readPassword("Enter new password: "); err != nil {
			return err
		}
	case *password == "":
		return fmt.Errorf("password required: use -password or -interactive")
	}

	user, err := store.GetUserByUsername(strings.ToLower(*username))
	if err != nil {
		return fmt.Errorf("user not found: %s", *username)
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := store.UpdateUserPassword(user.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Fprintf(out, "Password updated for user: %s\n", *username)
	return nil
}

func runUserList(args []string) error {
	fs := flag.NewFlagSet("user list", flag.ContinueOnError)
	store, err := openStore(fs, args)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "User ID\tUsername\tEmail\tCreated\tLast Login")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, u := range users {
		lastLogin := "never"
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.Format("2006-01-02 15:04")
		}
		email := u.Email
		if email == "" {
			email = "(none)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			short(u.UserID),
			u.Username,
			email,
			u.CreatedAt.Format("2006-01-02 15:04"),
			lastLogin,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal users: %d\n", len(users))
	return nil
}
