package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dustin/go-humanize"
)

func (a *App) upload(_ context.Context, args []string) error {
	paths := args
	if len(paths) == 0 {
		line, err := GetSimpleText(a.reader, "File path(s), separated by spaces", a.out)
		if err != nil {
			return err
		}
		paths = strings.Fields(line)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no files given", common.ErrorValidation)
	}

	files := make([]models.FileSource, 0, len(paths))
	for _, p := range paths {
		f, err := fileSource(p)
		if err != nil {
			failure(fmt.Sprintf("%s: %v", p, err))
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil
	}

	ids, rejected := a.uploads.Enqueue(files...)
	for _, r := range rejected {
		failure(r.String())
	}
	for _, id := range ids {
		if it, ok := a.uploads.Get(id); ok {
			notice(fmt.Sprintf("uploading %s (%s) as %s", it.File.Name, humanize.IBytes(uint64(it.File.Size)), id))
		}
	}
	return nil
}

func (a *App) listUploads(_ context.Context, _ []string) error {
	items := a.uploads.List()
	if len(items) == 0 {
		notice("no uploads in this session")
		return nil
	}

	printlnFn(titleStyle.Render("Uploads"))
	for _, it := range items {
		printlnFn(fmt.Sprintf("  %s  %-24s  %-9s  %s  %s",
			it.ID, it.File.Name, it.Status, progressBar(it.Progress), humanize.IBytes(uint64(it.File.Size))))
		switch it.Status {
		case models.UploadCompleted:
			printlnFn("      " + labelStyle.Render(it.URL))
		case models.UploadFailed:
			printlnFn("      " + errorStyle.Render(it.Error))
		}
	}
	return nil
}

// findUpload resolves a full id or an unambiguous id prefix.
func (a *App) findUpload(args []string) (models.UploadItem, error) {
	ref, err := requireArg(args, "upload id")
	if err != nil {
		return models.UploadItem{}, err
	}
	if it, ok := a.uploads.Get(ref); ok {
		return it, nil
	}

	var found []models.UploadItem
	for _, it := range a.uploads.List() {
		if strings.HasPrefix(it.ID, ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		return models.UploadItem{}, fmt.Errorf("upload %s: %w", ref, common.ErrorNotFound)
	case 1:
		return found[0], nil
	}
	return models.UploadItem{}, fmt.Errorf("%w: %q matches %d uploads", common.ErrorValidation, ref, len(found))
}

func (a *App) cancelUpload(_ context.Context, args []string) error {
	it, err := a.findUpload(args)
	if err != nil {
		return err
	}
	if !a.uploads.Cancel(it.ID) {
		return fmt.Errorf("%s is %s, only running uploads can be cancelled", it.File.Name, it.Status)
	}
	success(fmt.Sprintf("%s cancelled", it.File.Name))
	return nil
}

func (a *App) retryUpload(_ context.Context, args []string) error {
	it, err := a.findUpload(args)
	if err != nil {
		return err
	}
	if !a.uploads.Retry(it.ID) {
		return fmt.Errorf("%s is %s, only failed uploads can be retried", it.File.Name, it.Status)
	}
	notice(fmt.Sprintf("retrying %s", it.File.Name))
	return nil
}

func (a *App) removeUpload(_ context.Context, args []string) error {
	it, err := a.findUpload(args)
	if err != nil {
		return err
	}
	a.uploads.Remove(it.ID)
	success(fmt.Sprintf("%s removed from the list", it.File.Name))
	return nil
}

// resolveImage turns the id of a completed upload into its URL and returns
// anything else unchanged.
func (a *App) resolveImage(ref string) string {
	if it, ok := a.uploads.Get(ref); ok && it.Status == models.UploadCompleted {
		return it.URL
	}
	return ref
}
