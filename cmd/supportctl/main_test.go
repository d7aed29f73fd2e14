package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"
	adminsvc "support-desk/internal/service/admin"
	agentsvc "support-desk/internal/service/agent"
	"support-desk/internal/service/notification"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func useMemoryStores(t *testing.T) *stores {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	s := &stores{
		Admins: adminsvc.NewWithRepository(adminsvc.NewMemoryRepository(), now),
		Agents: agentsvc.NewWithRepository(agentsvc.NewMemoryRepository(), now),
		Close:  func() {},
	}
	orig := openStores
	openStores = func(ctx context.Context, configPath string) (*stores, error) { return s, nil }
	t.Cleanup(func() { openStores = orig })
	return s
}

func TestVersionCmd(t *testing.T) {
	origVersion, origCommit := Version, Commit
	Version, Commit = "1.2.0", "abc123"
	defer func() { Version, Commit = origVersion, origCommit }()

	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "supportctl 1.2.0") || !strings.Contains(out, "commit: abc123") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestRootCmdHasSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"version": false, "admin": false, "agent": false, "dynamo": false, "outbox": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if f := root.PersistentFlags().Lookup("config"); f == nil || f.DefValue != "support.yaml" {
		t.Errorf("expected --config flag defaulting to support.yaml")
	}
}

func TestAdminAddCreatesAccount(t *testing.T) {
	useMemoryStores(t)

	out, err := runCmd(t, "admin", "add", "--username", "root", "--password", "s3cret", "--name", "Root")
	if err != nil {
		t.Fatalf("admin add failed: %v (%s)", err, out)
	}
	if !strings.Contains(out, "Created admin root") {
		t.Errorf("unexpected output: %s", out)
	}

	if _, err := runCmd(t, "admin", "add", "--username", "root", "--password", "other"); err == nil {
		t.Errorf("expected duplicate username to fail")
	}
}

func TestAdminAddRequiresPassword(t *testing.T) {
	useMemoryStores(t)

	if _, err := runCmd(t, "admin", "add", "--username", "root"); err == nil {
		t.Fatalf("expected missing --password to fail")
	}
}

func TestAgentAddAndList(t *testing.T) {
	useMemoryStores(t)

	out, err := runCmd(t, "agent", "list")
	if err != nil {
		t.Fatalf("agent list failed: %v", err)
	}
	if !strings.Contains(out, "No agents found.") {
		t.Errorf("expected empty listing, got: %s", out)
	}

	if out, err := runCmd(t, "agent", "add", "--name", "Ana", "--username", "ana", "--password", "pw"); err != nil {
		t.Fatalf("agent add failed: %v (%s)", err, out)
	}
	if _, err := runCmd(t, "agent", "add", "--name", "Ana 2", "--username", "ana", "--password", "pw"); err == nil {
		t.Fatalf("expected duplicate username to fail")
	}

	out, err = runCmd(t, "agent", "list")
	if err != nil {
		t.Fatalf("agent list failed: %v", err)
	}
	if !strings.Contains(out, "USERNAME") || !strings.Contains(out, "ana") || !strings.Contains(out, string(model.AgentStatusOffline)) {
		t.Errorf("unexpected listing: %s", out)
	}
}

type fakeTables struct {
	existing []string
	ensured  map[string]string
	startKey map[string]interface{}
	limit    int32
}

func (f *fakeTables) ListTables(ctx context.Context) ([]string, error) { return f.existing, nil }

func (f *fakeTables) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
	return &types.TableDescription{
		TableName:   aws.String(table),
		TableStatus: types.TableStatusActive,
		ItemCount:   aws.Int64(3),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
	}, nil
}

func (f *fakeTables) EnsureTables(ctx context.Context, tables map[string]string) ([]string, error) {
	f.ensured = tables
	return []string{model.ChatsTable}, nil
}

func (f *fakeTables) ScanTable(ctx context.Context, table string, limit int32, startKey map[string]interface{}) (*database.ScanResult, error) {
	f.limit = limit
	f.startKey = startKey
	return &database.ScanResult{
		Items:            []map[string]interface{}{{"id": "t-1"}},
		Count:            1,
		ScannedCount:     1,
		LastEvaluatedKey: map[string]interface{}{"id": "t-1"},
	}, nil
}

func useFakeTables(t *testing.T) *fakeTables {
	t.Helper()
	f := &fakeTables{existing: []string{model.AgentsTable, model.ChatsTable}}
	orig := openTables
	openTables = func(configPath string) (tableAdmin, error) { return f, nil }
	t.Cleanup(func() { openTables = orig })
	return f
}

func TestDynamoCreateTables(t *testing.T) {
	f := useFakeTables(t)

	out, err := runCmd(t, "dynamo", "create-tables")
	if err != nil {
		t.Fatalf("create-tables failed: %v", err)
	}
	if len(f.ensured) != len(model.AllTables) {
		t.Errorf("expected every table to be ensured, got %v", f.ensured)
	}
	if !strings.Contains(out, "Created table Chats") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestDynamoTablesAndDescribe(t *testing.T) {
	useFakeTables(t)

	out, err := runCmd(t, "dynamo", "tables")
	if err != nil {
		t.Fatalf("tables failed: %v", err)
	}
	if !strings.Contains(out, "Agents") || !strings.Contains(out, "Chats") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = runCmd(t, "dynamo", "describe", "Tickets")
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}
	if !strings.Contains(out, "Tickets") || !strings.Contains(out, "id (HASH)") {
		t.Errorf("unexpected output: %s", out)
	}

	if _, err := runCmd(t, "dynamo", "describe"); err == nil {
		t.Errorf("expected describe without a table to fail")
	}
}

func TestDynamoScanPagesWithToken(t *testing.T) {
	f := useFakeTables(t)

	token, err := encodePageToken(map[string]interface{}{"id": "t-0"})
	if err != nil {
		t.Fatalf("encode token: %v", err)
	}

	out, err := runCmd(t, "dynamo", "scan", "Tickets", "--limit", "5", "--start", token)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if f.limit != 5 || f.startKey["id"] != "t-0" {
		t.Errorf("unexpected scan input: limit=%d start=%v", f.limit, f.startKey)
	}
	if !strings.Contains(out, `"id": "t-1"`) || !strings.Contains(out, "next: ") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestDecodePageTokenRejectsGarbage(t *testing.T) {
	if key, err := decodePageToken(""); err != nil || key != nil {
		t.Fatalf("expected empty token to mean first page, got %v %v", key, err)
	}
	if _, err := decodePageToken("%%%"); err == nil {
		t.Fatalf("expected invalid base64 to fail")
	}
	if tok, _ := encodePageToken(nil); tok != "" {
		t.Fatalf("expected no token for an exhausted scan, got %q", tok)
	}
}

type stubRetrier struct {
	res notification.RetryResult
	err error
}

func (s stubRetrier) RetryOutbox(ctx context.Context) (notification.RetryResult, error) {
	return s.res, s.err
}

func TestOutboxRetry(t *testing.T) {
	orig := openOutbox
	t.Cleanup(func() { openOutbox = orig })

	openOutbox = func(string) (outboxRetrier, error) {
		return stubRetrier{res: notification.RetryResult{Sent: 2, Failed: 1}}, nil
	}
	out, err := runCmd(t, "outbox", "retry")
	if err != nil {
		t.Fatalf("outbox retry failed: %v", err)
	}
	if !strings.Contains(out, "Resent 2 e-mail(s), 1 still queued") {
		t.Errorf("unexpected output: %s", out)
	}

	openOutbox = func(string) (outboxRetrier, error) {
		return stubRetrier{err: errors.New("smtp down")}, nil
	}
	if _, err := runCmd(t, "outbox", "retry"); err == nil {
		t.Errorf("expected retry error to surface")
	}
}
