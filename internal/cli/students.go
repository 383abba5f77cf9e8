package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sakif/studyhub/internal/apperror"
)

// readPassword prompts on stderr and reads a line from the terminal without
// echo. Tests replace it.
var readPassword = func(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Manage student accounts",
}

var studentName string

var studentsAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Register a student",
	Long:  "Register a student account. The password is prompted for twice and never echoed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		authService, err := newAuthService(db)
		if err != nil {
			return err
		}

		password, err := readPassword(cmd, "Enter password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword(cmd, "Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		if err := authService.Register(cmd.Context(), studentName, email, password); err != nil {
			// Domain errors already read like sentences ("Email already registered").
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				return errors.New(appErr.Message)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Student '%s' registered\n", email)
		return nil
	},
}

var studentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered students",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		authService, err := newAuthService(db)
		if err != nil {
			return err
		}

		students, err := authService.ListStudents(cmd.Context())
		if err != nil {
			return err
		}

		if len(students) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No students registered")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tREGISTERED")
		for _, s := range students {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Email, s.CreatedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	},
}

func init() {
	studentsAddCmd.Flags().StringVar(&studentName, "name", "", "display name of the student (required)")
	_ = studentsAddCmd.MarkFlagRequired("name")

	studentsCmd.AddCommand(studentsAddCmd)
	studentsCmd.AddCommand(studentsListCmd)
	rootCmd.AddCommand(studentsCmd)
}
