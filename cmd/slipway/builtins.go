package main

import (
	"github.com/slipway-io/slipway/internal/plugin"
	"github.com/slipway-io/slipway/internal/plugins/archive"
	"github.com/slipway-io/slipway/internal/plugins/badge"
	"github.com/slipway-io/slipway/internal/plugins/clean"
	"github.com/slipway-io/slipway/internal/plugins/pack"
	"github.com/slipway-io/slipway/internal/plugins/publish"
	"github.com/slipway-io/slipway/internal/plugins/scmrelease"
	"github.com/slipway-io/slipway/internal/plugins/testrun"
)

// overrides is consulted after the built-in catalog, so it can add plugin
// names but never shadow a built-in one.
var overrides = plugin.NewCatalog("override")

// RegisterOverride installs an additional plugin factory for this binary.
func RegisterOverride(name string, factory plugin.Factory) error {
	return overrides.Register(name, factory)
}

// builtinCatalog registers every plugin compiled into the binary, in the
// order they are listed by the plugins command.
func builtinCatalog() *plugin.Catalog {
	catalog := plugin.NewCatalog("builtin")
	catalog.MustRegister("test", testrun.New)
	catalog.MustRegister("pack", pack.New)
	catalog.MustRegister("archive", archive.New)
	catalog.MustRegister("publish", publish.New)
	catalog.MustRegister("scm-release", scmrelease.New)
	catalog.MustRegister("clean", clean.New)
	catalog.MustRegister("badge", badge.New)
	return catalog
}
