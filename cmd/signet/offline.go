package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"signet/internal/domain"
	"signet/internal/infra/crypto"
	"signet/pkg/codec"
)

const (
	publicKeyFile  = "public.pem"
	privateKeyFile = "private.pem"
)

var errSignatureInvalid = errors.New("signature invalid")

func newKeygenCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA-2048 key pair (SPKI and PKCS#8 PEM)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pair, err := crypto.NewProvisioner().GenerateKeyPair()
			if err != nil {
				return err
			}
			if outDir == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), pair.PublicKeyPEM+pair.PrivateKeyPEM)
				return err
			}
			return writeKeyPair(outDir, pair)
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for public.pem and private.pem; stdout when empty")
	return cmd
}

func writeKeyPair(dir string, pair domain.KeyPair) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, publicKeyFile), []byte(pair.PublicKeyPEM), 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, privateKeyFile), []byte(pair.PrivateKeyPEM), 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	return nil
}

func newSignCmd() *cobra.Command {
	var keyPath, text string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign text with a PKCS#8 private key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keyPEM, err := os.ReadFile(keyPath)
			if err != nil {
				return fmt.Errorf("read private key: %w", err)
			}
			sig, err := (&crypto.Service{}).Sign(string(keyPEM), []byte(text))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), codec.EncodeSignature(sig))
			return err
		},
	}
	cmd.Flags().StringVar(&keyPath, "private-key", "", "path to the private key PEM")
	cmd.Flags().StringVar(&text, "text", "", "text to sign")
	_ = cmd.MarkFlagRequired("private-key")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var keyPath, text, signature string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a detached signature with an SPKI public key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keyPEM, err := os.ReadFile(keyPath)
			if err != nil {
				return fmt.Errorf("read public key: %w", err)
			}
			sig, err := codec.DecodeSignature(strings.TrimSpace(signature))
			if err != nil {
				return err
			}
			valid, err := (&crypto.Service{}).Verify(string(keyPEM), []byte(text), sig)
			if err != nil {
				return err
			}
			status := domain.VerifyStatusInvalid
			if valid {
				status = domain.VerifyStatusValid
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if !valid {
				return errSignatureInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "public-key", "", "path to the public key PEM")
	cmd.Flags().StringVar(&text, "text", "", "signed text")
	cmd.Flags().StringVar(&signature, "signature", "", "base64url signature")
	_ = cmd.MarkFlagRequired("public-key")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}
