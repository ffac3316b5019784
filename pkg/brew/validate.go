package brew

import (
	"regexp"

	"github.com/arthur-debert/shard/pkg/errors"
)

var (
	packagePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-.+@]*$`)
	tapPattern     = regexp.MustCompile(`^[a-zA-Z0-9_\-]+/[a-zA-Z0-9_\-]+$`)
	optionPattern  = regexp.MustCompile(`^--?[a-zA-Z0-9_\-]+(=[a-zA-Z0-9_\-.+/]+)?$`)
)

// ValidatePackage rejects names that could be interpreted by the shell or
// by brew as anything other than a package
func ValidatePackage(name string) error {
	if !packagePattern.MatchString(name) {
		return errors.Newf(errors.ErrValidation, "invalid package name %q", name).
			WithDetail("package", name)
	}
	return nil
}

// ValidatePackages validates every name, failing on the first bad one
func ValidatePackages(names []string) error {
	for _, n := range names {
		if err := ValidatePackage(n); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTap requires the owner/repo form
func ValidateTap(tap string) error {
	if !tapPattern.MatchString(tap) {
		return errors.Newf(errors.ErrValidation, "invalid tap name %q", tap).
			WithDetail("tap", tap)
	}
	return nil
}

// ValidateOptions requires every option to be a flag with an optional
// simple value
func ValidateOptions(options []string) error {
	for _, opt := range options {
		if !optionPattern.MatchString(opt) {
			return errors.Newf(errors.ErrValidation, "invalid option %q", opt).
				WithDetail("option", opt)
		}
	}
	return nil
}
