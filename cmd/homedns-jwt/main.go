// Command homedns-jwt manages the subject registry consumed by the DNS
// server's REST control plane: registering a principal's public key,
// listing registered subjects, and revoking one.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vadim-su/homedns/internal/auth"
	"github.com/vadim-su/homedns/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "remove":
		err = runRemove(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "homedns-jwt: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: homedns-jwt <add|list|remove> [flags]")
	fmt.Fprintln(os.Stderr, "  homedns-jwt add --cert <path> [--id <uuid>] [--subjects <path>] [--cert-dir <path>]")
	fmt.Fprintln(os.Stderr, "  homedns-jwt list [--subjects <path>] [--cert-dir <path>]")
	fmt.Fprintln(os.Stderr, "  homedns-jwt remove --id <uuid> [--subjects <path>] [--cert-dir <path>]")
}

func openRegistry(subjects, certDir string) *auth.Registry {
	if subjects == "" {
		subjects = config.DefaultConfig().JWTAuth.Subjects
	}
	if certDir == "" {
		certDir = defaultCertDir(subjects)
	}
	return auth.NewRegistry(subjects, certDir)
}

func defaultCertDir(subjectsPath string) string {
	dir := subjectsPath
	for i := len(dir) - 1; i >= 0; i-- {
		if dir[i] == '/' {
			return dir[:i] + "/certs"
		}
	}
	return "certs"
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	certPath := fs.String("cert", "", "path to the subject's PEM public key")
	id := fs.String("id", "", "subject id (UUID); generated if omitted")
	subjects := fs.String("subjects", "", "path to the subjects registry file")
	certDir := fs.String("cert-dir", "", "directory to store subject certificates")
	fs.Parse(args)

	if *certPath == "" {
		return fmt.Errorf("--cert is required")
	}

	certPEM, err := os.ReadFile(*certPath)
	if err != nil {
		return fmt.Errorf("failed to read certificate: %w", err)
	}

	registry := openRegistry(*subjects, *certDir)
	subject, err := registry.AddSubject(*id, certPEM)
	if err != nil {
		return fmt.Errorf("failed to add subject: %w", err)
	}

	fmt.Printf("added subject %s (%s)\n", subject.ID, subject.CertificatePath)
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	subjects := fs.String("subjects", "", "path to the subjects registry file")
	certDir := fs.String("cert-dir", "", "directory subject certificates are stored in")
	fs.Parse(args)

	registry := openRegistry(*subjects, *certDir)
	list, err := registry.ListSubjects()
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("no subjects registered")
		return nil
	}

	for _, s := range list {
		fmt.Printf("%s\t%s\t%s\n", s.ID, s.CertificatePath, s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}

func runRemove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	id := fs.String("id", "", "subject id to remove")
	subjects := fs.String("subjects", "", "path to the subjects registry file")
	certDir := fs.String("cert-dir", "", "directory subject certificates are stored in")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	registry := openRegistry(*subjects, *certDir)
	if err := registry.RemoveSubject(*id); err != nil {
		return fmt.Errorf("failed to remove subject: %w", err)
	}

	fmt.Printf("removed subject %s\n", *id)
	return nil
}
