package adapters

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Artifact is one local package file staged for upload. SHA256 lets the
// caller attach a content hash to the reference aptly reports back.
type Artifact struct {
	Path     string
	Filename string
	SHA256   string
}

// StatArtifact checks a local package file and computes its content hash.
func StatArtifact(path string) (Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		return Artifact{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to load package %q", path)).
			WithCause(err)
	}
	defer file.Close()
	digest := sha256.New()
	if _, err := io.Copy(digest, file); err != nil {
		return Artifact{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read package %q", path)).
			WithCause(err)
	}
	return Artifact{
		Path:     path,
		Filename: filepath.Base(path),
		SHA256:   hex.EncodeToString(digest.Sum(nil)),
	}, nil
}
