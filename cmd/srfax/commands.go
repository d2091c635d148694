package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	srfax "github.com/vingd/srfax-go"
)

func queueCmd(e *env) *cobra.Command {
	var (
		to          []string
		callerID    string
		senderEmail string
		at          string
		coverPage   string
		subject     string
		notifyURL   string
	)

	cmd := &cobra.Command{
		Use:   "queue --to NUMBER [--to NUMBER...] FILE...",
		Short: "Queue a fax",
		Long: `Queue a fax of up to 5 documents to one or more numbers in E.164 format.
More than one --to sends a broadcast.`,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			docs := make([]srfax.Document, 0, len(args))
			for _, path := range args {
				docs = append(docs, srfax.FileDocument(path))
			}

			opts := []srfax.QueueOption{srfax.WithSender(callerID, senderEmail)}
			if at != "" {
				when, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				opts = append(opts, srfax.WithSchedule(when))
			}
			if coverPage != "" {
				opts = append(opts, srfax.WithCoverPage(srfax.CoverPage{Template: coverPage, Subject: subject}))
			}
			if notifyURL != "" {
				opts = append(opts, srfax.WithNotifyURL(notifyURL))
			}

			id, err := e.client.QueueFax(cmd.Context(), to, docs, opts...)
			if err != nil {
				return err
			}
			return e.out.print(QueueOutput{ID: id.String()})
		}),
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&to, "to", nil, "destination number in E.164 format (repeatable)")
	flags.StringVar(&callerID, "caller-id", "", "override the configured caller ID")
	flags.StringVar(&senderEmail, "sender-email", "", "override the configured sender email")
	flags.StringVar(&at, "at", "", "schedule transmission (RFC 3339)")
	flags.StringVar(&coverPage, "cover-page", "", "cover page template (Basic, Standard, Company, Personal)")
	flags.StringVar(&subject, "subject", "", "cover page subject")
	flags.StringVar(&notifyURL, "notify-url", "", "URL called when the fax completes")
	return cmd
}

func statusCmd(e *env) *cobra.Command {
	var (
		wait        bool
		waitTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status ID...",
		Short: "Show the delivery status of sent faxes",
		Args:  cobra.MinimumNArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				id := srfax.FaxID(args[0])
				var st *srfax.FaxStatus
				var err error
				if wait {
					st, err = e.client.WaitForFax(ctx, id, srfax.WithWaitTimeout(waitTimeout))
				} else {
					st, err = e.client.GetFaxStatus(ctx, id)
				}
				if err != nil {
					return err
				}
				return e.out.print(statusOutput(st))
			}

			if wait {
				return errors.New("--wait takes a single fax id")
			}
			statuses, err := e.client.GetFaxStatuses(ctx, faxIDs(args))
			if err != nil {
				return err
			}
			out := make([]StatusOutput, 0, len(statuses))
			for i := range statuses {
				out = append(out, statusOutput(&statuses[i]))
			}
			return e.out.print(out)
		}),
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the fax is delivered or failed")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 30*time.Minute, "give up waiting after this long")
	return cmd
}

// rangeFlags are the --from and --until flags of the listing commands.
type rangeFlags struct {
	from  string
	until string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.until, "until", "", "last day (YYYY-MM-DD)")
}

func (r *rangeFlags) parse() (time.Time, time.Time, error) {
	return dateRange(r.from, r.until)
}

func sentCmd(e *env) *cobra.Command {
	var (
		period   rangeFlags
		subUsers bool
	)

	cmd := &cobra.Command{
		Use:   "sent",
		Short: "List sent faxes, oldest first",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			start, end, err := period.parse()
			if err != nil {
				return err
			}
			var opts []srfax.ListOption
			if subUsers {
				opts = append(opts, srfax.WithSubUsers())
			}

			entries, err := e.client.GetSentFaxes(cmd.Context(), start, end, opts...)
			if err != nil {
				return err
			}
			return e.out.print(entryOutputs(entries))
		}),
	}

	period.register(cmd)
	cmd.Flags().BoolVar(&subUsers, "sub-users", false, "include sub user faxes")
	return cmd
}

func receivedCmd(e *env) *cobra.Command {
	var (
		period   rangeFlags
		viewed   string
		subUsers bool
	)

	cmd := &cobra.Command{
		Use:   "received",
		Short: "List received faxes, oldest first",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			start, end, err := period.parse()
			if err != nil {
				return err
			}
			opts := []srfax.ListOption{srfax.WithViewed(srfax.ViewedFilter(strings.ToUpper(viewed)))}
			if subUsers {
				opts = append(opts, srfax.WithSubUsers())
			}

			entries, err := e.client.GetReceivedFaxes(cmd.Context(), start, end, opts...)
			if err != nil {
				return err
			}
			return e.out.print(entryOutputs(entries))
		}),
	}

	period.register(cmd)
	cmd.Flags().StringVar(&viewed, "viewed", "all", "filter: all, read or unread")
	cmd.Flags().BoolVar(&subUsers, "sub-users", false, "include sub user faxes")
	return cmd
}

func retrieveCmd(e *env) *cobra.Command {
	var (
		format     string
		direction  string
		outPath    string
		markViewed bool
	)

	cmd := &cobra.Command{
		Use:   "retrieve ID",
		Short: "Download a fax document",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}
			opts := []srfax.FaxOption{srfax.WithDirection(dir)}
			if markViewed {
				opts = append(opts, srfax.WithMarkViewed())
			}

			id := srfax.FaxID(args[0])
			file, err := e.client.RetrieveFax(cmd.Context(), id, srfax.FileFormat(strings.ToUpper(format)), opts...)
			if err != nil {
				return err
			}

			if outPath == "-" {
				_, err := e.cfg.Stdout.Write(file.Content)
				return err
			}

			path := outPath
			if path == "" {
				// File names carry a '|' which is awkward on disk.
				path = id.DetailsID() + "." + strings.ToLower(string(file.Format))
			}
			if err := os.WriteFile(path, file.Content, 0o600); err != nil {
				return err
			}
			e.logger.Info("fax saved", zap.String("id", id.String()), zap.String("path", path))

			return e.out.print(FileOutput{
				ID:     id.String(),
				Format: string(file.Format),
				Path:   path,
				Bytes:  len(file.Content),
			})
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&format, "format", "PDF", "document format: PDF or TIFF")
	flags.StringVar(&direction, "direction", "out", "folder: out or in")
	flags.StringVar(&outPath, "out", "", "file to write (default <id>.<format>, - for stdout)")
	flags.BoolVar(&markViewed, "mark-viewed", false, "mark the fax as read")
	return cmd
}

func deleteCmd(e *env) *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete up to 5 faxes from one folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}
			if err := e.client.DeleteFax(cmd.Context(), faxIDs(args), srfax.WithDirection(dir)); err != nil {
				return err
			}
			return e.out.print(AckOutput{Success: true})
		}),
	}

	cmd.Flags().StringVar(&direction, "direction", "out", "folder: out or in")
	return cmd
}

func stopCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stop ID",
		Short: "Cancel a queued fax",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			if err := e.client.StopFax(cmd.Context(), srfax.FaxID(args[0])); err != nil {
				return err
			}
			return e.out.print(AckOutput{Success: true})
		}),
	}
}

func viewedCmd(e *env) *cobra.Command {
	var (
		direction string
		unread    bool
	)

	cmd := &cobra.Command{
		Use:   "viewed ID",
		Short: "Mark a fax as read or unread",
		Args:  cobra.ExactArgs(1),
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}
			if err := e.client.MarkViewed(cmd.Context(), srfax.FaxID(args[0]), !unread, srfax.WithDirection(dir)); err != nil {
				return err
			}
			return e.out.print(AckOutput{Success: true})
		}),
	}

	cmd.Flags().StringVar(&direction, "direction", "in", "folder: out or in")
	cmd.Flags().BoolVar(&unread, "unread", false, "mark as unread instead")
	return cmd
}

func usageCmd(e *env) *cobra.Command {
	var period rangeFlags

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show account usage",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			start, end, err := period.parse()
			if err != nil {
				return err
			}
			usage, err := e.client.GetUsage(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return e.out.print(usageOutputs(usage))
		}),
	}

	period.register(cmd)
	return cmd
}
