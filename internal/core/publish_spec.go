package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aptly-ctl/internal/types"
)

// ParsePublishSpec parses "[storage:]prefix/distribution" into a publish
// target. The distribution is everything after the last slash; a bare
// distribution refers to the root prefix ".".
func ParsePublishSpec(spec string) (types.PublishTarget, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return types.PublishTarget{}, invalidPublishSpecErr(spec, "empty spec")
	}
	target := types.PublishTarget{Prefix: "."}
	slash := strings.LastIndexByte(trimmed, '/')
	if slash < 0 {
		target.Distribution = trimmed
		return target, nil
	}
	prefix, distribution := trimmed[:slash], trimmed[slash+1:]
	if prefix == "" || distribution == "" {
		return types.PublishTarget{}, invalidPublishSpecErr(spec, "prefix and distribution must both be non-empty")
	}
	if colon := strings.LastIndexByte(prefix, ':'); colon >= 0 {
		storage, rest := prefix[:colon], prefix[colon+1:]
		if storage == "" || rest == "" {
			return types.PublishTarget{}, invalidPublishSpecErr(spec, "storage and prefix must both be non-empty")
		}
		target.Storage = storage
		prefix = rest
	}
	target.Prefix = prefix
	target.Distribution = distribution
	return target, nil
}

func invalidPublishSpecErr(spec string, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid publish spec %q: %s", spec, reason))
}
