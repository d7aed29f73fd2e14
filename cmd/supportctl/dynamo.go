package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spf13/cobra"
)

type tableAdmin interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) (*types.TableDescription, error)
	EnsureTables(ctx context.Context, tables map[string]string) ([]string, error)
	ScanTable(ctx context.Context, table string, limit int32, startKey map[string]interface{}) (*database.ScanResult, error)
}

// openTables is swapped out by tests.
var openTables = func(configPath string) (tableAdmin, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return database.NewDynamoDBClient(cfg.Storage.Dynamo)
}

func newDynamoCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dynamo",
		Short: "Manage the DynamoDB tables",
		Long:  "Creates and inspects the tables used when storage.driver is dynamo.",
	}
	cmd.AddCommand(newDynamoCreateTablesCmd(configPath))
	cmd.AddCommand(newDynamoTablesCmd(configPath))
	cmd.AddCommand(newDynamoDescribeCmd(configPath))
	cmd.AddCommand(newDynamoScanCmd(configPath))
	return cmd
}

func newDynamoCreateTablesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Create any missing support tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openTables(*configPath)
			if err != nil {
				return err
			}
			created, err := client.EnsureTables(cmd.Context(), model.AllTables)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(created) == 0 {
				fmt.Fprintln(out, "All tables already exist.")
				return nil
			}
			for _, name := range created {
				fmt.Fprintf(out, "Created table %s\n", name)
			}
			return nil
		},
	}
}

func newDynamoTablesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables on the configured endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openTables(*configPath)
			if err != nil {
				return err
			}
			names, err := client.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No tables found.")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func newDynamoDescribeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show key schema and item count of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openTables(*configPath)
			if err != nil {
				return err
			}
			desc, err := client.DescribeTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Table:\t%s\n", aws.ToString(desc.TableName))
			fmt.Fprintf(w, "Status:\t%s\n", desc.TableStatus)
			fmt.Fprintf(w, "Items:\t%d\n", aws.ToInt64(desc.ItemCount))
			keys := make([]string, 0, len(desc.KeySchema))
			for _, k := range desc.KeySchema {
				keys = append(keys, fmt.Sprintf("%s (%s)", aws.ToString(k.AttributeName), k.KeyType))
			}
			fmt.Fprintf(w, "Keys:\t%s\n", strings.Join(keys, ", "))
			return w.Flush()
		},
	}
}

func newDynamoScanCmd(configPath *string) *cobra.Command {
	var (
		limit int32
		start string
	)

	cmd := &cobra.Command{
		Use:   "scan <table>",
		Short: "Print one page of items as JSON",
		Long:  "Scans one page of a table. Pass the printed next-page token to --start to continue.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDynamoScan(cmd, *configPath, args[0], limit, start)
		},
	}
	cmd.Flags().Int32Var(&limit, "limit", 20, "items per page (1-100)")
	cmd.Flags().StringVar(&start, "start", "", "next-page token from a previous scan")
	return cmd
}

func runDynamoScan(cmd *cobra.Command, configPath, table string, limit int32, start string) error {
	startKey, err := decodePageToken(start)
	if err != nil {
		return err
	}
	client, err := openTables(configPath)
	if err != nil {
		return err
	}
	res, err := client.ScanTable(cmd.Context(), table, limit, startKey)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Items); err != nil {
		return err
	}
	fmt.Fprintf(out, "count=%d scanned=%d\n", res.Count, res.ScannedCount)

	token, err := encodePageToken(res.LastEvaluatedKey)
	if err != nil {
		return err
	}
	if token != "" {
		fmt.Fprintf(out, "next: %s\n", token)
	}
	return nil
}

func decodePageToken(token string) (map[string]interface{}, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode page token: %w", err)
	}
	var key map[string]interface{}
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("decode page token: %w", err)
	}
	return key, nil
}

func encodePageToken(key map[string]interface{}) (string, error) {
	if len(key) == 0 {
		return "", nil
	}
	data, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("encode page token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}
