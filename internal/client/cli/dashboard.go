package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gallerist/internal/client/client"
	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/client/rbac"
)

// dashboard is the default view every signed-in role can open.
func (a *App) dashboard(ctx context.Context, _ []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	caps := rbac.PermissionsOf(u.Role)

	printlnFn(titleStyle.Render("Welcome, " + u.Name()))
	field("Role", string(u.Role))

	names := make([]string, 0, len(caps))
	for _, c := range caps.List() {
		names = append(names, string(c))
	}
	field("Can", strings.Join(names, ", "))

	if caps.Has(rbac.UploadFiles) {
		counts := map[models.UploadStatus]int{}
		for _, it := range a.uploads.List() {
			counts[it.Status]++
		}
		field("Uploads", fmt.Sprintf("%d running, %d done, %d failed",
			counts[models.UploadUploading]+counts[models.UploadPending],
			counts[models.UploadCompleted], counts[models.UploadFailed]))
	}

	if caps.Has(rbac.ViewAdminDashboard) {
		a.adminTotals(ctx)
	}
	return nil
}

// adminTotals prints catalog sizes; a failing backend only costs the line.
func (a *App) adminTotals(ctx context.Context) {
	one := client.ListQuery{Limit: 1}

	if _, n, err := a.catalog.ListArtworks(ctx, one); err != nil {
		a.logger.Warn(ctx, "artwork totals unavailable", "error", err)
	} else {
		field("Artworks", fmt.Sprint(n))
	}
	if _, n, err := a.catalog.ListGalleries(ctx, one); err != nil {
		a.logger.Warn(ctx, "gallery totals unavailable", "error", err)
	} else {
		field("Galleries", fmt.Sprint(n))
	}
}
