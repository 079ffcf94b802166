package access

// Action is something a principal attempts on a resource
type Action string

const (
	ActionCreateObject Action = "create_object"
	ActionViewObject   Action = "view_object"
	ActionUpdateObject Action = "update_object"

	ActionViewPhoto   Action = "view_photo"
	ActionViewVideo   Action = "view_video"
	ActionUploadPhoto Action = "upload_photo"
	ActionUploadVideo Action = "upload_video"

	ActionViewFolder   Action = "view_folder"
	ActionManageFolder Action = "manage_folder"

	ActionToggleResourceVisibility Action = "toggle_resource_visibility"

	ActionViewComment             Action = "view_comment"
	ActionCreateComment           Action = "create_comment"
	ActionDeleteComment           Action = "delete_comment"
	ActionToggleCommentVisibility Action = "toggle_comment_visibility"

	ActionViewItem     Action = "view_item"
	ActionCreateItem   Action = "create_item"
	ActionManageItem   Action = "manage_item"
	ActionDownloadItem Action = "download_item"
	ActionPurchaseItem Action = "purchase_item"

	ActionViewBimModel    Action = "view_bim_model"
	ActionUploadBimModel  Action = "upload_bim_model"
	ActionGenerateBimTree Action = "generate_bim_tree"
	ActionSaveBimTree     Action = "save_bim_tree"

	ActionViewPortfolio       Action = "view_portfolio"
	ActionCreatePortfolioItem Action = "create_portfolio_item"
	ActionManagePortfolioItem Action = "manage_portfolio_item"

	ActionManageAssignments Action = "manage_assignments"
	ActionManageUsers       Action = "manage_users"
)

// knownActions is the closed action set; the capability file may only name these
var knownActions = map[Action]struct{}{
	ActionCreateObject: {}, ActionViewObject: {}, ActionUpdateObject: {},
	ActionViewPhoto: {}, ActionViewVideo: {}, ActionUploadPhoto: {}, ActionUploadVideo: {},
	ActionViewFolder: {}, ActionManageFolder: {},
	ActionToggleResourceVisibility: {},
	ActionViewComment: {}, ActionCreateComment: {}, ActionDeleteComment: {}, ActionToggleCommentVisibility: {},
	ActionViewItem: {}, ActionCreateItem: {}, ActionManageItem: {}, ActionDownloadItem: {}, ActionPurchaseItem: {},
	ActionViewBimModel: {}, ActionUploadBimModel: {}, ActionGenerateBimTree: {}, ActionSaveBimTree: {},
	ActionViewPortfolio: {}, ActionCreatePortfolioItem: {}, ActionManagePortfolioItem: {},
	ActionManageAssignments: {}, ActionManageUsers: {},
}

// Known reports whether a is part of the action set
func (a Action) Known() bool {
	_, ok := knownActions[a]
	return ok
}

// AuthorRestricted reports whether only the resource's author (or an admin)
// may perform a
func (a Action) AuthorRestricted() bool {
	switch a {
	case ActionDeleteComment, ActionToggleCommentVisibility, ActionManageItem, ActionManagePortfolioItem:
		return true
	}
	return false
}

// IsRead reports whether a only reads the resource
func (a Action) IsRead() bool {
	switch a {
	case ActionViewObject, ActionViewPhoto, ActionViewVideo, ActionViewFolder,
		ActionViewComment, ActionViewItem, ActionViewBimModel, ActionViewPortfolio:
		return true
	}
	return false
}
