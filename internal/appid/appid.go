// Package appid resolves the appraisals app identity: an explicit
// FULMEN_APP_IDENTITY_PATH file wins, then a repo .fulmen/app.yaml, then the
// identity embedded in the binary.
package appid

import (
	"context"
	"fmt"

	"github.com/fulmenhq/gofulmen/appidentity"

	appidentityassets "github.com/hayeswinckle/appraisals/internal/assets/appidentity"
)

// registerErr is kept so Get can explain a missing embedded fallback.
var registerErr = appidentity.RegisterEmbeddedIdentityYAML(appidentityassets.YAML)

// Get returns the process identity.
func Get(ctx context.Context) (*appidentity.Identity, error) {
	identity, err := appidentity.Get(ctx)
	if err != nil && registerErr != nil {
		return nil, fmt.Errorf("%w (embedded identity unavailable: %v)", err, registerErr)
	}
	return identity, err
}
