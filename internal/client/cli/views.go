package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gallerist/internal/client/guard"
	"github.com/dmitrijs2005/gallerist/internal/client/rbac"
	"github.com/dmitrijs2005/gallerist/internal/common"
)

const (
	signInView  = "login"
	defaultView = "dashboard"
)

type view struct {
	name    string
	aliases []string
	usage   string
	summary string
	// need is the capability required to open the view; empty means public.
	need rbac.Capability
	run  func(ctx context.Context, args []string) error
}

func (a *App) registerViews() {
	a.order = []*view{
		{name: "help", aliases: []string{"?"}, summary: "show available commands", run: a.help},
		{name: signInView, summary: "sign in", run: a.login},
		{name: "logout", summary: "sign out and forget the local session", run: a.logout},
		{name: "forgot", summary: "request a password reset email", run: a.forgot},
		{name: "reset", usage: "[token]", summary: "set a new password with a reset token", run: a.reset},
		{name: "whoami", aliases: []string{"me"}, summary: "refresh and show the signed-in user", need: rbac.Browse, run: a.whoami},
		{name: defaultView, summary: "overview of your account", need: rbac.Browse, run: a.dashboard},
		{name: "profile", summary: "edit your profile", need: rbac.EditProfile, run: a.profile},
		{name: "artworks", usage: "[-search s] [-artist id] [-gallery id] [-mine] [-sort field] [-order asc|desc] [-page n] [-limit n]", summary: "list artworks", need: rbac.Browse, run: a.listArtworks},
		{name: "artwork-add", summary: "add an artwork", need: rbac.ManageOwnArtworks, run: a.addArtwork},
		{name: "artwork-edit", usage: "<id>", summary: "edit an artwork", need: rbac.ManageOwnArtworks, run: a.editArtwork},
		{name: "artwork-delete", usage: "<id>", summary: "delete an artwork", need: rbac.ManageOwnArtworks, run: a.deleteArtwork},
		{name: "galleries", usage: "[-search s] [-manager id] [-sort field] [-order asc|desc] [-page n] [-limit n]", summary: "list galleries", need: rbac.Browse, run: a.listGalleries},
		{name: "gallery-add", summary: "add a gallery", need: rbac.ManageGalleries, run: a.addGallery},
		{name: "gallery-delete", usage: "<id>", summary: "delete a gallery", need: rbac.ManageGalleries, run: a.deleteGallery},
		{name: "upload", usage: "<path>...", summary: "upload image files", need: rbac.UploadFiles, run: a.upload},
		{name: "uploads", summary: "show uploads of this session", need: rbac.UploadFiles, run: a.listUploads},
		{name: "cancel", usage: "<upload-id>", summary: "cancel a running upload", need: rbac.UploadFiles, run: a.cancelUpload},
		{name: "retry", usage: "<upload-id>", summary: "retry a failed upload", need: rbac.UploadFiles, run: a.retryUpload},
		{name: "remove", usage: "<upload-id>", summary: "drop an upload from the list", need: rbac.UploadFiles, run: a.removeUpload},
	}

	a.views = make(map[string]*view, len(a.order))
	for _, v := range a.order {
		a.views[v.name] = v
		for _, alias := range v.aliases {
			a.views[alias] = v
		}
	}
}

// Open runs the named view and prints any error it returns. It reports
// false for an unknown name.
func (a *App) Open(ctx context.Context, name string, args []string) bool {
	v, ok := a.views[name]
	if !ok {
		return false
	}
	if err := a.open(ctx, v, args); err != nil {
		a.logger.Debug(ctx, "view failed", "view", v.name, "error", err)
		failure(describe(err))
	}
	return true
}

// open puts protected views behind a route guard built from the roles that
// hold the view's capability.
func (a *App) open(ctx context.Context, v *view, args []string) error {
	if v.need == "" {
		return v.run(ctx, args)
	}

	g := guard.New(a.store, a.jar, a.auth.Fetcher(), a.logger, rbac.RolesWith(v.need)...)
	g.Mount(ctx)
	if g.Outcome(ctx) == guard.Loading {
		notice("loading…")
	}

	outcome, err := g.Await(ctx)
	if err != nil {
		return err
	}
	a.logger.Debug(ctx, "route guard", "view", v.name, "outcome", outcome)

	switch outcome {
	case guard.RedirectSignIn:
		notice(fmt.Sprintf("sign in to open %s", v.name))
		return a.views[signInView].run(ctx, nil)
	case guard.RedirectDefault:
		if v.name == defaultView {
			return common.ErrorForbidden
		}
		failure(fmt.Sprintf("your role cannot open %s", v.name))
		return a.open(ctx, a.views[defaultView], nil)
	}
	return v.run(ctx, args)
}

func (a *App) help(_ context.Context, _ []string) error {
	caps := rbac.Capabilities{}
	if u := a.store.Snapshot().User; u != nil {
		caps = rbac.PermissionsOf(u.Role)
	}

	printlnFn(titleStyle.Render("Available commands"))
	for _, v := range a.order {
		if v.need != "" && !caps.Has(v.need) {
			continue
		}
		name := strings.TrimSpace(v.name + " " + v.usage)
		printlnFn(fmt.Sprintf("  %-24s %s", name, labelStyle.Render(v.summary)))
	}
	printlnFn(fmt.Sprintf("  %-24s %s", "exit", labelStyle.Render("leave the program")))
	return nil
}

// requireArg returns args[0] or a validation error naming what is missing.
func requireArg(args []string, what string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrorValidation, what)
	}
	return args[0], nil
}
