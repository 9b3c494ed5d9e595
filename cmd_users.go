package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"go-shop/models"
	"go-shop/services"
	"go-shop/store"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and manage the user store",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored users",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		userStore, release, err := openUserStore(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}
		defer release()

		list, err := userStore.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No users.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
		for _, u := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
		}
		return w.Flush()
	},
}

var adminUser = services.UserInput{Role: models.RoleAdmin}

var usersCreateAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an ADMIN account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		userStore, release, err := openUserStore(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}
		defer release()

		u, err := services.NewUserService(userStore, slog.Default()).Create(cmd.Context(), adminUser)
		if err != nil {
			return err
		}
		fmt.Printf("Created admin %s (%s)\n", u.Username, u.ID)
		return nil
	},
}

var usersClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every user from the file store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.UserStore != "file" {
			return errors.New("clear is only supported for the file user store")
		}
		fs, err := store.OpenFileUserStore(cfg.UserDBFile, slog.Default())
		if err != nil {
			return err
		}
		if err := fs.Clear(); err != nil {
			return err
		}
		fmt.Printf("Cleared %s\n", cfg.UserDBFile)
		return nil
	},
}

func init() {
	f := usersCreateAdminCmd.Flags()
	f.StringVar(&adminUser.Username, "username", "", "admin username")
	f.StringVar(&adminUser.Email, "email", "", "admin email")
	f.StringVar(&adminUser.Password, "password", "", "admin password")
	_ = usersCreateAdminCmd.MarkFlagRequired("username")
	_ = usersCreateAdminCmd.MarkFlagRequired("email")
	_ = usersCreateAdminCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersListCmd, usersCreateAdminCmd, usersClearCmd)
}
