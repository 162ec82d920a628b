package app

import "orgtasks/internal/types"

type DeployBundlesRequest struct {
	// Path is the parent directory holding one subdirectory per
	// bundle. Resolved against the working directory when relative.
	Path string
}

type DeployBundlesResult struct {
	// Bundles lists the deployed bundle names in deployment order.
	Bundles []string
}

type FreezeRequest struct {
	// Path must exist; freeze has no warn-and-skip contract.
	Path       string
	ParentStep types.StepRef
	Project    types.ProjectInfo

	// OutputPath, when set, is where the plan is written ("-" for
	// stdout). Empty means the steps are only returned.
	OutputPath string
}

type FreezeResult struct {
	Steps []types.DeploymentStep
}

type UploadPhotoRequest struct {
	UserID    string
	PhotoPath string
}

type UploadPhotoResult struct {
	UserID            string
	ContentDocumentID string
}
