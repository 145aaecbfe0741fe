package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/fulmenhq/gofulmen/crucible"

	"github.com/hayeswinckle/appraisals/internal/lead"
)

// AppVersion is injected from main via SetVersionInfo
var (
	AppVersion   = "dev"
	AppCommit    = "unknown"
	AppBuildDate = "unknown"
	appIdentity  *appidentity.Identity
)

// SetVersionInfo sets the version information for the handler
func SetVersionInfo(version, commit, buildDate string) {
	AppVersion = version
	AppCommit = commit
	AppBuildDate = buildDate
}

// SetAppIdentity sets the app identity for the handler
func SetAppIdentity(identity *appidentity.Identity) {
	appIdentity = identity
}

// VersionResponse represents the version information response
type VersionResponse struct {
	App          AppInfo  `json:"app"`
	Forms        []string `json:"forms"`
	Dependencies DepInfo  `json:"dependencies"`
	Platform     string   `json:"platform"`
}

// AppInfo contains application version details
type AppInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
	Commit      string `json:"git_commit"`
	BuildDate   string `json:"build_date"`
	GoVersion   string `json:"go_version,omitempty"`
}

// DepInfo contains dependency version information
type DepInfo struct {
	Gofulmen string `json:"gofulmen"`
	Crucible string `json:"crucible"`
}

// VersionHandler handles version information requests
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	version := crucible.GetVersion()

	name := "appraisals"
	description := ""
	if appIdentity != nil {
		name = appIdentity.BinaryName
		description = appIdentity.Description
	} else if len(os.Args) > 0 && os.Args[0] != "" {
		name = filepath.Base(os.Args[0])
	}

	forms := make([]string, 0, len(lead.Kinds))
	for _, kind := range lead.Kinds {
		forms = append(forms, string(kind))
	}

	writeJSON(w, http.StatusOK, VersionResponse{
		App: AppInfo{
			Name:        name,
			Description: description,
			Version:     AppVersion,
			Commit:      AppCommit,
			BuildDate:   AppBuildDate,
			GoVersion:   runtime.Version(),
		},
		Forms: forms,
		Dependencies: DepInfo{
			Gofulmen: version.Gofulmen,
			Crucible: version.Crucible,
		},
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	})
}
