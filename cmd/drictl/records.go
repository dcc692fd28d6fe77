package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-dri/pkg/dri"
)

var (
	recordCmd = &cobra.Command{
		Use:   "record",
		Short: "Create, read, update and remove records",
	}
	getCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Prints a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := svc.GetRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, record)
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [type] [properties-json]",
		Short: "Creates a record and prints its id",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dri.CreateRecordRequest{Type: args[0]}
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &req.Properties); err != nil {
					return fmt.Errorf("properties must be a JSON object: %w", err)
				}
			}
			req.ParentID, _ = cmd.Flags().GetString("parent")
			req.FileLocation, _ = cmd.Flags().GetString("file")

			id, err := svc.CreateRecord(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [id] [update-json]",
		Short: "Applies a partial update, e.g. '{\"properties\":{\"title\":\"x\"}}'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dri.UpdateRecordRequest
			if err := json.Unmarshal([]byte(args[1]), &req); err != nil {
				return fmt.Errorf("update must be a JSON object: %w", err)
			}
			if err := svc.UpdateRecord(cmd.Context(), args[0], req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "updated successfully")
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [id]",
		Short: "Removes a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := svc.RemoveRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	typesCmd = &cobra.Command{
		Use:   "types",
		Short: "Lists the configured record types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := svc.GetRecordTypes(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, types)
		},
	}
	recentCmd = &cobra.Command{
		Use:   "recent [type]",
		Short: "Lists the most recently created records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				records []*dri.Record
				err     error
			)
			if len(args) == 1 {
				records, err = svc.LastCreatedByType(cmd.Context(), args[0])
			} else {
				records, err = svc.LastCreated(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
	editedCmd = &cobra.Command{
		Use:   "edited [type]",
		Short: "Lists the most recently modified records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				records []*dri.Record
				err     error
			)
			if len(args) == 1 {
				records, err = svc.LastEditedByType(cmd.Context(), args[0])
			} else {
				records, err = svc.LastEdited(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
	queryCmd = &cobra.Command{
		Use:   "query [field] [value]",
		Short: "Finds records whose field starts with value, ignoring case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := svc.QueryRecords(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
	childrenCmd = &cobra.Command{
		Use:   "children [id] [page] [pageSize]",
		Short: "Prints one page of a record's children",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("page must be a number: %w", err)
			}
			pageSize, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("pageSize must be a number: %w", err)
			}
			result, err := svc.GetChildren(cmd.Context(), args[0], page, pageSize)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Counts records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter dri.RecordFilter
			filter.Type, _ = cmd.Flags().GetString("type")
			if cmd.Flags().Changed("parent") {
				parent, _ := cmd.Flags().GetString("parent")
				filter.ParentID = &parent
			}
			count, err := svc.CountRecords(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
)

func init() {
	createCmd.Flags().String("parent", "", "parent record id")
	createCmd.Flags().String("file", "", "file location returned by upload")

	countCmd.Flags().String("type", "", "only count records of this type")
	countCmd.Flags().String("parent", "", "only count children of this record")

	recordCmd.AddCommand(getCmd)
	recordCmd.AddCommand(createCmd)
	recordCmd.AddCommand(updateCmd)
	recordCmd.AddCommand(removeCmd)
}
