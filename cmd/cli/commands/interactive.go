package commands

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command: a session where the config
// and solver backend are set up once and many scenarios can be solved in turn.
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (load config once, run multiple commands)",
		Long: `Start an interactive session where you can solve and validate scenarios
repeatedly without reloading configuration. Type 'help' for available
commands, 'exit' or 'quit' to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nInteractive session started.")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			siblings := sessionCommands(cmd)
			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("wardroster> ")
				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts, err := splitArgs(line)
				if err != nil {
					fmt.Printf("error: %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}
				name, cmdArgs := parts[0], parts[1:]

				switch name {
				case "exit", "quit":
					return nil
				case "help":
					printSessionHelp(siblings)
					continue
				}

				target, ok := siblings[name]
				if !ok {
					fmt.Printf("unknown command %q (type 'help' for available commands)\n\n", name)
					continue
				}

				if err := runDirectly(target, cmdArgs); err != nil {
					fmt.Printf("error: %v\n\n", err)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}
			return nil
		},
	}
}

// sessionCommands collects the sibling commands usable inside the session.
func sessionCommands(cmd *cobra.Command) map[string]*cobra.Command {
	siblings := make(map[string]*cobra.Command)
	for _, sub := range cmd.Parent().Commands() {
		switch sub.Name() {
		case "interactive", "completion", "help":
			continue
		}
		siblings[sub.Name()] = sub
	}
	return siblings
}

// runDirectly invokes a command's RunE without going through Execute, so the
// root PersistentPreRunE does not reinitialize the app on every line.
func runDirectly(target *cobra.Command, args []string) error {
	target.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		flag.Value.Set(flag.DefValue)
	})

	if err := target.ParseFlags(args); err != nil {
		return err
	}
	args = target.Flags().Args()

	if err := target.Args(target, args); err != nil {
		return err
	}
	if target.RunE != nil {
		return target.RunE(target, args)
	}
	if target.Run != nil {
		target.Run(target, args)
	}
	return nil
}

func printSessionHelp(siblings map[string]*cobra.Command) {
	names := make([]string, 0, len(siblings))
	for name := range siblings {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nAvailable commands:")
	for _, name := range names {
		fmt.Printf("  %-36s %s\n", siblings[name].Use, siblings[name].Short)
	}
	fmt.Println("\n  help                                 Show this help message")
	fmt.Println("  exit, quit                           Exit the interactive session")
}

// splitArgs splits a command line into arguments, respecting single and
// double quotes.
func splitArgs(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args, nil
}
