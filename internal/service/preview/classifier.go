package preview

import (
	models "previewhub/internal/domain/models/preview"
	wsmodels "previewhub/internal/domain/models/workspace"
)

// Marker files looked up among a project's root children
const (
	mobileManifest = "pubspec.yaml"
	backendEntry   = "server.js"
)

// Classify decides how a project is previewed.
// Priority: mobile manifest, then backend entry, then bundled frontend.
func Classify(project *wsmodels.Node) models.ProjectKind {
	if hasRootFile(project, mobileManifest) {
		return models.KindMobileApp
	}
	if hasRootFile(project, backendEntry) {
		return models.KindBackendService
	}
	return models.KindBundledFrontend
}

func hasRootFile(project *wsmodels.Node, name string) bool {
	if project == nil {
		return false
	}
	child, _ := project.Child(name)
	return child != nil && !child.IsFolder()
}
