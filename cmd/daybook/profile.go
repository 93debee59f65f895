package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/entity"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the user profile",
	Long: `Show and edit the profile record.

Full name and birthday are end-to-end encrypted with this device's key
before they enter the store; the backend only ever sees ciphertext. If the
key is missing (fresh device), 'profile show' reports whether a remote key
backup exists to restore from ('daybook key restore').`,
}

var (
	profileDisplayName string
	profileFullName    string
	profileBirthday    string
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		// Load the existing profile, if any.
		profile := entity.Profile{ID: a.cfg.UserID}
		if rec, ok := a.store.GetRecord(a.cfg.UserID, entity.KindProfile, a.cfg.UserID); ok {
			if err := entity.FromRecord(rec, &profile); err != nil {
				fatal("Malformed profile record: %v", err)
			}
		}

		if profileDisplayName != "" {
			profile.DisplayName = profileDisplayName
		}
		if profileFullName != "" {
			env, err := a.keys.EncryptStringPtr(&profileFullName)
			if err != nil {
				fatal("Failed to encrypt full name: %v", err)
			}
			profile.FullName = env
		}
		if profileBirthday != "" {
			env, err := a.keys.EncryptStringPtr(&profileBirthday)
			if err != nil {
				fatal("Failed to encrypt birthday: %v", err)
			}
			profile.Birthday = env
		}
		profile.UpdatedAt = time.Now().UTC()

		rec, err := entity.ToRecord(&profile)
		if err != nil {
			fatal("%v", err)
		}
		if _, err := a.store.UpsertLocal(a.cfg.UserID, entity.KindProfile, rec); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: change saved in memory only: %v\n", err)
		}
		fmt.Println("Profile updated.")
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile, decrypting protected fields",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		rec, ok := a.store.GetRecord(a.cfg.UserID, entity.KindProfile, a.cfg.UserID)
		if !ok {
			fmt.Println("No profile yet. Use 'daybook profile set'.")
			return
		}
		var profile entity.Profile
		if err := entity.FromRecord(rec, &profile); err != nil {
			fatal("Malformed profile record: %v", err)
		}

		fmt.Printf("Display name: %s\n", profile.DisplayName)

		if !a.keys.HasLocalKey() && (profile.FullName != nil || profile.Birthday != nil) {
			required, err := a.keys.RecoveryRequired(context.Background(), a.backend, a.cfg.UserID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
			if required {
				fmt.Println("Protected fields locked: run 'daybook key restore' with your passphrase.")
			} else {
				fmt.Println("Protected fields locked: no key on this device and no remote backup found.")
			}
			return
		}

		printProtected(a, "Full name", profile.FullName)
		printProtected(a, "Birthday", profile.Birthday)
	},
}

func printProtected(a *app, label string, envelope *string) {
	plain, err := a.keys.DecryptStringPtr(envelope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not decrypt %s: %v\n", label, err)
		return
	}
	if plain != nil {
		fmt.Printf("%s: %s\n", label, *plain)
	}
}

func init() {
	profileSetCmd.Flags().StringVar(&profileDisplayName, "display-name", "", "public display name")
	profileSetCmd.Flags().StringVar(&profileFullName, "full-name", "", "full name (end-to-end encrypted)")
	profileSetCmd.Flags().StringVar(&profileBirthday, "birthday", "", "birthday (end-to-end encrypted)")

	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
}
