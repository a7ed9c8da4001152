package app

import "fmt"

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

func currentBuildInfo() buildInfo {
	return buildInfo{Version: buildVersion, Commit: buildCommit, Date: buildDate}
}

func BuildVersionString() string {
	return fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
}
