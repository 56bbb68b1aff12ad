package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Fixed branch names and prefixes of the fcmm families.
const (
	MasterBranch = "master"
	PkgBranch    = "lb-pkg"
	CfgPrefix    = "lb-cfg-"
	TopicPrefix  = "tb-"
	TempType     = "dev"
	BackupType   = "bak"
)

// DefaultDevType is the type of topic branches created without one.
const DefaultDevType = "fea"

// MaxNameLength bounds a name that becomes part of a branch name. Backup
// branch names add a prefix, a timestamp and the operator to it.
const MaxNameLength = 200

var invalidNameChars = regexp.MustCompile(`[^-_/.a-zA-Z0-9]`)

// ValidateName checks a branch name part given by the user: letters, digits
// and "-_/." only, no leading "-", "/" or ".", no trailing "/" or ".", and
// none of the sequences git refuses in a ref.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name is empty")
	case len(name) > MaxNameLength:
		return fmt.Errorf("name %q is longer than %d bytes", name, MaxNameLength)
	case invalidNameChars.MatchString(name):
		return fmt.Errorf("name %q may only contain letters, digits and - _ / .", name)
	case strings.ContainsAny(name[:1], "-/."):
		return fmt.Errorf("name %q cannot start with %q", name, name[:1])
	case strings.HasSuffix(name, "/") || strings.HasSuffix(name, "."):
		return fmt.Errorf("name %q cannot end with %q", name, name[len(name)-1:])
	case strings.Contains(name, "..") || strings.Contains(name, "//") || strings.Contains(name, "/."):
		return fmt.Errorf("name %q contains an empty or hidden path component", name)
	case strings.HasSuffix(name, ".lock"):
		return fmt.Errorf("name %q cannot end with .lock", name)
	}
	return nil
}

// CfgBranchName returns lb-cfg-<name>.
func CfgBranchName(name string) string {
	return CfgPrefix + name
}

// DevBranchName returns tb-<type>-<name>.
func DevBranchName(typ, name string) string {
	return TopicPrefix + typ + "-" + name
}

// TempBranchName returns tb-dev-<name>.
func TempBranchName(name string) string {
	return DevBranchName(TempType, name)
}

// BackupBranchName returns tb-bak-<branch>-<ts>, with -by-<operator> appended
// when operator is set.
func BackupBranchName(branch, ts, operator string) string {
	name := DevBranchName(BackupType, branch) + "-" + ts
	if operator != "" {
		name += "-by-" + operator
	}
	return name
}

// BaselineBranch is the branch new work starts from: lb-pkg when the
// repository has one, master otherwise.
func BaselineBranch(hasPkg bool) string {
	if hasPkg {
		return PkgBranch
	}
	return MasterBranch
}

// IsProtected reports whether name is master or lb-pkg.
func IsProtected(name string) bool {
	return name == MasterBranch || name == PkgBranch
}

// IsCfgBranch reports whether name is an lb-cfg- branch.
func IsCfgBranch(name string) bool {
	return strings.HasPrefix(name, CfgPrefix) && len(name) > len(CfgPrefix)
}

// IsTopicBranch reports whether name is a tb- branch.
func IsTopicBranch(name string) bool {
	return strings.HasPrefix(name, TopicPrefix) && len(name) > len(TopicPrefix)
}
