package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const contextRoot = modulePath + "/contexts/governance/liquid-democracy"

func writeSource(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.go")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDomainMayImportSha3(t *testing.T) {
	path := writeSource(t, `package services

import (
	"strings"

	"golang.org/x/crypto/sha3"
	"liquido/contexts/governance/liquid-democracy/domain/entities"
)
`)
	got := validateFile(path, "contexts/governance/liquid-democracy/domain/services/source.go", "domain", contextRoot)
	require.Empty(t, got)
}

func TestApplicationMustNotImportAdaptersOrTransport(t *testing.T) {
	path := writeSource(t, `package commands

import (
	"liquido/contexts/governance/liquid-democracy/adapters/memory"
	"liquido/contexts/governance/liquid-democracy/transport/http"
	"liquido/contexts/governance/liquid-democracy/ports"
	"gorm.io/gorm"
)
`)
	got := validateFile(path, "contexts/governance/liquid-democracy/application/commands/source.go", "application", contextRoot)
	rules := make([]string, 0, len(got))
	for _, v := range got {
		rules = append(rules, v.Rule)
	}
	require.ElementsMatch(t, []string{
		"application must not import adapters",
		"application must not import transport",
		"application import is outside explicit allowlist",
	}, rules)
}

func TestPortsOnlyImportDomain(t *testing.T) {
	path := writeSource(t, `package ports

import (
	"liquido/contexts/governance/liquid-democracy/application"
	"liquido/internal/platform/db"
)
`)
	got := validateFile(path, "contexts/governance/liquid-democracy/ports/source.go", "ports", contextRoot)
	require.Len(t, got, 2)
}

func TestTransportDTOsStayStandalone(t *testing.T) {
	require.Equal(t, []string{"transport must not import domain"},
		checkImport("transport", contextRoot+"/domain/entities", contextRoot))
	require.Empty(t, checkImport("transport", "time", contextRoot))
}

func TestCrossContextImportIsReported(t *testing.T) {
	got := checkImport("adapters", modulePath+"/contexts/governance/other-service/ports", contextRoot)
	require.Equal(t, []string{"cross-context imports are forbidden"}, got)
}
