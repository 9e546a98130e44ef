package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/delivery/grpcapi"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type rootOptions struct {
	addr    string
	timeout time.Duration
	out     io.Writer
}

type rpcCall func(ctx context.Context, client *grpcapi.Client) (*structpb.Struct, error)

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{out: out}

	rootCmd := &cobra.Command{
		Use:           "payoutctl",
		Short:         "Operator CLI for KOL commission payouts",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.addr, "addr", envOr("PAYOUTCTL_ADDR", "localhost:50061"), "payout service gRPC address")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(eligibleCmd(opts))
	rootCmd.AddCommand(generateCmd(opts))
	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(showCmd(opts))
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// run dials the service, performs one call and prints the response as JSON.
// Status details, such as a partial generate result, are printed too.
func (o *rootOptions) run(ctx context.Context, call rpcCall) error {
	conn, err := grpc.NewClient(o.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", o.addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := call(ctx, grpcapi.NewClient(conn))
	if err != nil {
		if st, ok := status.FromError(err); ok {
			for _, d := range st.Details() {
				if partial, ok := d.(*structpb.Struct); ok {
					_ = o.print(partial)
				}
			}
			return fmt.Errorf("%s: %s", st.Code(), st.Message())
		}
		return err
	}
	return o.print(resp)
}

func (o *rootOptions) print(resp *structpb.Struct) error {
	raw, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.out, string(raw))
	return err
}

func eligibleCmd(opts *rootOptions) *cobra.Command {
	var influencerID, from, to string
	cmd := &cobra.Command{
		Use:   "eligible",
		Short: "List influencers with unpaid commission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"influencer_id": influencerID,
				"created_from":  from,
				"created_to":    to,
			}
			return opts.run(cmd.Context(), func(ctx context.Context, c *grpcapi.Client) (*structpb.Struct, error) {
				return c.GetEligiblePayouts(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&influencerID, "influencer", "", "only this influencer")
	cmd.Flags().StringVar(&from, "from", "", "orders created at or after (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "orders created at or before (YYYY-MM-DD or RFC3339)")
	return cmd
}

// readInstructions loads a generate request from a JSON file: either
// {"payouts": [...]} or a bare array of instructions.
func readInstructions(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	switch v := body.(type) {
	case map[string]any:
		return v, nil
	case []any:
		return map[string]any{"payouts": v}, nil
	default:
		return nil, fmt.Errorf("parse %s: expected an object or an array", path)
	}
}

func generateCmd(opts *rootOptions) *cobra.Command {
	var (
		file         string
		all          bool
		influencerID string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create pending payouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == !all {
				return errors.New("exactly one of --file or --all is required")
			}
			req := map[string]any{"all": true, "influencer_id": influencerID}
			if file != "" {
				var err error
				if req, err = readInstructions(file); err != nil {
					return err
				}
			}
			return opts.run(cmd.Context(), func(ctx context.Context, c *grpcapi.Client) (*structpb.Struct, error) {
				return c.GeneratePayouts(ctx, req)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with payout instructions")
	cmd.Flags().BoolVar(&all, "all", false, "pay every currently eligible influencer")
	cmd.Flags().StringVar(&influencerID, "influencer", "", "with --all, only this influencer")
	return cmd
}

func statusCmd(opts *rootOptions) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "status <payout-id> <pending|completed|failed>",
		Short: "Change the payment status of a payout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"payout_id": args[0], "status": args[1], "notes": notes}
			return opts.run(cmd.Context(), func(ctx context.Context, c *grpcapi.Client) (*structpb.Struct, error) {
				return c.UpdatePayoutStatus(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "operator notes, empty clears them")
	return cmd
}

func listCmd(opts *rootOptions) *cobra.Command {
	var (
		statusFilter, search, influencerID, sortBy string
		page, limit                                int
		asc                                        bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payouts with per-status totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order := "desc"
			if asc {
				order = "asc"
			}
			req := map[string]any{
				"status":        statusFilter,
				"search":        search,
				"influencer_id": influencerID,
				"sort_by":       sortBy,
				"sort_order":    order,
				"page":          page,
				"limit":         limit,
			}
			return opts.run(cmd.Context(), func(ctx context.Context, c *grpcapi.Client) (*structpb.Struct, error) {
				return c.ListPayouts(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "all", "pending, completed, failed or all")
	cmd.Flags().StringVar(&search, "search", "", "match influencer name, username or email")
	cmd.Flags().StringVar(&influencerID, "influencer", "", "only this influencer")
	cmd.Flags().StringVar(&sortBy, "sort-by", "payout_date", "payout_date, total_amount or created_at")
	cmd.Flags().BoolVar(&asc, "asc", false, "ascending order")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	return cmd
}

func showCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <payout-id>",
		Short: "Show a payout with its order items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), func(ctx context.Context, c *grpcapi.Client) (*structpb.Struct, error) {
				return c.GetPayoutDetails(ctx, map[string]any{"payout_id": args[0]})
			})
		},
	}
}
