package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"librarycard/internal/assets"
	"librarycard/internal/card"
	"librarycard/internal/catalog"
	"librarycard/internal/render"
)

type renderOptions struct {
	file   string
	out    string
	photo  string
	logo   string
	strict bool
	req    card.Request
}

func newRenderCmd(logger func() *zap.Logger) *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a card to a PDF file",
		Long: `Render a two-sided library card. Card details come from a YAML file
(--file) and/or flags; flags override the file.`,
		Example: `  cardctl render --file asha.yaml --photo asha.jpg --logo logo.png
  cardctl render --name "Asha Lin" --enrollment 1446RGUST23 --department Botany \
    --course "BSc in Botany" --semester 1st --years 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, o, logger())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "YAML file with card details")
	f.StringVarP(&o.out, "out", "o", "", "output path (default: derived from the name)")
	f.StringVar(&o.photo, "photo", "", "photo file, http(s) URL or data: URI")
	f.StringVar(&o.logo, "logo", os.Getenv("LOGO_PATH"), "logo image file")
	f.BoolVar(&o.strict, "strict", false, "require the course to belong to the department")
	f.StringVar(&o.req.FullName, "name", "", "full name")
	f.StringVar(&o.req.EnrollmentNumber, "enrollment", "", "enrollment number")
	f.StringVar(&o.req.Department, "department", "", "department")
	f.StringVar(&o.req.Course, "course", "", "course")
	f.StringVar(&o.req.Semester, "semester", "", "semester")
	f.IntVar(&o.req.ValidityYears, "years", 0, "validity in years (1-5)")
	return cmd
}

func runRender(cmd *cobra.Command, o renderOptions, log *zap.Logger) error {
	req, err := loadRequest(o.file, o.req)
	if err != nil {
		return err
	}
	var vopts []card.Option
	if o.strict {
		vopts = append(vopts, card.WithCoursePairing(catalog.Table{}))
	}
	// The photo may be a local path here; readPhoto resolves it.
	check := req
	check.PhotoURL = ""
	if err := card.NewValidator(vopts...).ValidateRequest(check); err != nil {
		var verr *card.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.Field, fe.Message)
			}
		}
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	in := render.Inputs{Logo: assets.NewLogo(o.logo, "", nil, log).Bytes(ctx)}
	in.Photo, in.PhotoErr = readPhoto(ctx, o.photo, req.PhotoURL)
	if in.PhotoErr != nil {
		log.Warn("photo unavailable", zap.Error(in.PhotoErr))
	}

	res, err := render.New(render.WithLogger(log)).RenderWith(req, in)
	if err != nil {
		return err
	}
	out := o.out
	if out == "" {
		out = res.Filename
	}
	if err := os.WriteFile(out, res.PDF, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (barcode %s, valid until %s)\n",
		out, res.BarcodeValue, card.FormatDate(res.ValidUntil))
	for _, n := range res.Notes {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", n.Element, n.Reason)
	}
	return nil
}

// loadRequest reads path (if set) and overlays the non-zero fields of flags.
func loadRequest(path string, flags card.Request) (card.Request, error) {
	var req card.Request
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return card.Request{}, err
		}
		if err := yaml.Unmarshal(data, &req); err != nil {
			return card.Request{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	overlay := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	overlay(&req.FullName, flags.FullName)
	overlay(&req.EnrollmentNumber, flags.EnrollmentNumber)
	overlay(&req.Department, flags.Department)
	overlay(&req.Course, flags.Course)
	overlay(&req.Semester, flags.Semester)
	if flags.ValidityYears != 0 {
		req.ValidityYears = flags.ValidityYears
	}
	for _, s := range []*string{&req.FullName, &req.EnrollmentNumber, &req.Department, &req.Course, &req.Semester, &req.PhotoURL} {
		*s = strings.TrimSpace(*s)
	}
	return req, nil
}

// readPhoto prefers the --photo flag over the request's photoUrl. Local
// files are read directly; anything else goes through the asset client.
func readPhoto(ctx context.Context, flag, fromRequest string) ([]byte, error) {
	ref := flag
	if ref == "" {
		ref = fromRequest
	}
	if ref == "" {
		return nil, nil
	}
	if _, err := os.Stat(ref); err == nil {
		return os.ReadFile(ref)
	}
	return assets.New(20*time.Second, assets.DefaultMaxBytes).FetchPhoto(ctx, ref)
}
