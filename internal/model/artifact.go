package model

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joseph-ayodele/bloodwork/internal/common"
)

// readArtifact reads a trained artifact from disk. Every failure is reported
// as ARTIFACT_MISSING so that startup aborts before any document is read.
func readArtifact(path string) ([]byte, error) {
	if path == "" {
		return nil, common.NewAppError(common.KindArtifactMissing, "Model or label encoder file missing.", errors.New("no path configured"))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewAppError(common.KindArtifactMissing, "Model or label encoder file missing.", err)
		}
		return nil, artifactError(err)
	}
	return b, nil
}

// statArtifact checks that path names a readable regular file without
// loading it.
func statArtifact(path string) error {
	if path == "" {
		return common.NewAppError(common.KindArtifactMissing, "Model or label encoder file missing.", errors.New("no path configured"))
	}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.NewAppError(common.KindArtifactMissing, "Model or label encoder file missing.", err)
		}
		return artifactError(err)
	}
	if st.IsDir() {
		return common.NewAppError(common.KindArtifactMissing, "Model or label encoder file missing.", errors.New(path+" is a directory"))
	}
	return nil
}

func artifactError(err error) error {
	return common.NewAppError(common.KindArtifactMissing, "Failed to load model or encoder: "+err.Error(), err)
}
