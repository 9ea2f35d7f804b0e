package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/gallerist/internal/client/client"
	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/client/rbac"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dustin/go-humanize"
)

// listFlags binds the shared list options of a list view.
func (a *App) listFlags(name string, q *client.ListQuery) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&q.Search, "search", "", "free-text search")
	fs.StringVar(&q.Sort, "sort", "", "sort field")
	fs.StringVar(&q.Order, "order", "", "asc or desc")
	fs.IntVar(&q.Page, "page", 0, "page number")
	fs.IntVar(&q.Limit, "limit", 0, "page size")
	return fs
}

// parseList reports false when the view should stop, such as after -h.
func parseList(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return true, nil
}

func (a *App) currentUser() (*models.User, error) {
	u := a.store.Snapshot().User
	if u == nil {
		return nil, common.ErrorUnauthorized
	}
	return u, nil
}

// canManageArtwork reports whether u may change art: anyone with the
// manage-all capability, otherwise only the artist who owns it.
func canManageArtwork(u *models.User, art *models.Artwork) bool {
	caps := rbac.PermissionsOf(u.Role)
	if caps.Has(rbac.ManageAllArtworks) {
		return true
	}
	return caps.Has(rbac.ManageOwnArtworks) && art.ArtistID == u.ID
}

func formatPrice(p float64) string {
	if p == 0 {
		return "-"
	}
	return humanize.CommafWithDigits(p, 2)
}

func (a *App) listArtworks(ctx context.Context, args []string) error {
	var q client.ListQuery
	var mine bool
	fs := a.listFlags("artworks", &q)
	fs.StringVar(&q.ArtistID, "artist", "", "artist id")
	fs.StringVar(&q.GalleryID, "gallery", "", "gallery id")
	fs.BoolVar(&mine, "mine", false, "only my artworks")
	if ok, err := parseList(fs, args); !ok {
		return err
	}
	if mine {
		u, err := a.currentUser()
		if err != nil {
			return err
		}
		q.ArtistID = u.ID
	}

	items, total, err := a.catalog.ListArtworks(ctx, q)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		notice("no artworks found")
		return nil
	}

	printlnFn(titleStyle.Render(fmt.Sprintf("Artworks (%d of %d)", len(items), total)))
	for _, art := range items {
		year := "-"
		if art.Year > 0 {
			year = fmt.Sprint(art.Year)
		}
		printlnFn(fmt.Sprintf("  %-36s  %-30s  %4s  %12s", art.ID, art.Title, year, formatPrice(art.Price)))
	}
	return nil
}

// artworkForm asks for every artwork field, offering cur's values as
// defaults.
func (a *App) artworkForm(cur models.ArtworkInput) (models.ArtworkInput, error) {
	in := cur
	var err error

	if in.Title, err = getWithDefault(a.reader, "Title", cur.Title, a.out); err != nil {
		return in, err
	}
	desc, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return in, err
	}
	if desc != "" {
		in.Description = desc
	}
	if in.Medium, err = getWithDefault(a.reader, "Medium", cur.Medium, a.out); err != nil {
		return in, err
	}
	if in.Year, err = getInt(a.reader, "Year", cur.Year, a.out); err != nil {
		return in, err
	}
	if in.Price, err = getFloat(a.reader, "Price", cur.Price, a.out); err != nil {
		return in, err
	}

	gallery := ""
	if cur.GalleryID != nil {
		gallery = *cur.GalleryID
	}
	if gallery, err = getWithDefault(a.reader, "Gallery id (optional)", gallery, a.out); err != nil {
		return in, err
	}
	in.GalleryID = nil
	if gallery != "" {
		in.GalleryID = &gallery
	}

	image, err := getWithDefault(a.reader, "Image (URL or upload id)", cur.ImageURL, a.out)
	if err != nil {
		return in, err
	}
	in.ImageURL = a.resolveImage(image)
	return in, nil
}

func (a *App) addArtwork(ctx context.Context, _ []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	in := models.ArtworkInput{ArtistID: u.ID}
	if rbac.PermissionsOf(u.Role).Has(rbac.ManageAllArtworks) {
		if in.ArtistID, err = getWithDefault(a.reader, "Artist id", u.ID, a.out); err != nil {
			return err
		}
	}

	if in, err = a.artworkForm(in); err != nil {
		return err
	}
	art, err := a.catalog.CreateArtwork(ctx, in)
	if err != nil {
		return err
	}
	success(fmt.Sprintf("artwork %q created (%s)", art.Title, art.ID))
	return nil
}

func (a *App) editArtwork(ctx context.Context, args []string) error {
	id, err := requireArg(args, "artwork id")
	if err != nil {
		return err
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	art, err := a.catalog.GetArtwork(ctx, id)
	if err != nil {
		return err
	}
	if !canManageArtwork(u, art) {
		return common.ErrorForbidden
	}

	in, err := a.artworkForm(models.ArtworkInput{
		Title:       art.Title,
		Description: art.Description,
		ArtistID:    art.ArtistID,
		GalleryID:   art.GalleryID,
		Medium:      art.Medium,
		Year:        art.Year,
		Price:       art.Price,
		ImageURL:    art.ImageURL,
	})
	if err != nil {
		return err
	}
	updated, err := a.catalog.UpdateArtwork(ctx, id, in)
	if err != nil {
		return err
	}
	success(fmt.Sprintf("artwork %q updated", updated.Title))
	return nil
}

func (a *App) deleteArtwork(ctx context.Context, args []string) error {
	id, err := requireArg(args, "artwork id")
	if err != nil {
		return err
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	art, err := a.catalog.GetArtwork(ctx, id)
	if err != nil {
		return err
	}
	if !canManageArtwork(u, art) {
		return common.ErrorForbidden
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete %q?", art.Title), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.catalog.DeleteArtwork(ctx, id); err != nil {
		return err
	}
	success(fmt.Sprintf("artwork %q deleted", art.Title))
	return nil
}

func (a *App) listGalleries(ctx context.Context, args []string) error {
	var q client.ListQuery
	fs := a.listFlags("galleries", &q)
	fs.StringVar(&q.ManagerID, "manager", "", "manager id")
	if ok, err := parseList(fs, args); !ok {
		return err
	}

	items, total, err := a.catalog.ListGalleries(ctx, q)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		notice("no galleries found")
		return nil
	}

	printlnFn(titleStyle.Render(fmt.Sprintf("Galleries (%d of %d)", len(items), total)))
	for _, g := range items {
		printlnFn(fmt.Sprintf("  %-36s  %-30s  %s", g.ID, g.Name, g.Location))
	}
	return nil
}

func (a *App) addGallery(ctx context.Context, _ []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	in := models.GalleryInput{ManagerID: u.ID}
	if u.Role == models.RoleAdmin {
		if in.ManagerID, err = getWithDefault(a.reader, "Manager id", u.ID, a.out); err != nil {
			return err
		}
	}
	if in.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	if in.Location, err = GetSimpleText(a.reader, "Location", a.out); err != nil {
		return err
	}

	g, err := a.catalog.CreateGallery(ctx, in)
	if err != nil {
		return err
	}
	success(fmt.Sprintf("gallery %q created (%s)", g.Name, g.ID))
	return nil
}

func (a *App) deleteGallery(ctx context.Context, args []string) error {
	id, err := requireArg(args, "gallery id")
	if err != nil {
		return err
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete gallery %s?", id), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.catalog.DeleteGallery(ctx, id); err != nil {
		return err
	}
	success("gallery deleted")
	return nil
}
