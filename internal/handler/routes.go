package handler

import (
	"net/http"
)

// Routes groups the portal's handlers
type Routes struct {
	Health    *HealthHandler
	Users     *UserHandler
	Objects   *ObjectHandler
	Folders   *FolderHandler
	Photos    *MediaHandler
	Videos    *MediaHandler
	Bim       *BimHandler
	Comments  *CommentHandler
	Catalog   *CatalogHandler
	Commerce  *CommerceHandler
	Portfolio *PortfolioHandler
}

// Register mounts every route on mux. Authentication is applied by the
// middleware chain wrapping mux, not here.
func (rt *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("POST /api/commerce/webhook", rt.Commerce.Webhook)

	mux.HandleFunc("GET /api/me", rt.Users.Me)
	mux.HandleFunc("PATCH /api/users/{id}/role", rt.Users.UpdateRole)

	mux.HandleFunc("GET /api/objects", rt.Objects.ListObjects)
	mux.HandleFunc("POST /api/objects", rt.Objects.CreateObject)
	mux.HandleFunc("GET /api/objects/{id}", rt.Objects.GetObject)
	mux.HandleFunc("PATCH /api/objects/{id}", rt.Objects.UpdateObject)
	mux.HandleFunc("POST /api/objects/{id}/assignments", rt.Objects.Assign)
	mux.HandleFunc("DELETE /api/objects/{id}/assignments/{userID}", rt.Objects.Unassign)

	mux.HandleFunc("GET /api/objects/{id}/folders", rt.Folders.ListFolders)
	mux.HandleFunc("POST /api/objects/{id}/folders", rt.Folders.CreateFolder)

	for _, media := range []*MediaHandler{rt.Photos, rt.Videos} {
		prefix := media.routePrefix()
		mux.HandleFunc("GET "+prefix, media.ListMedia)
		mux.HandleFunc("POST "+prefix, media.Upload)
		mux.HandleFunc("GET "+prefix+"/{mediaID}/file", media.Stream)
		mux.HandleFunc("PATCH "+prefix+"/{mediaID}/visibility", media.SetVisibility)
		mux.HandleFunc("PUT "+prefix+"/{mediaID}/folder", media.MoveToFolder)
	}

	mux.HandleFunc("GET /api/objects/{id}/models", rt.Bim.ListModels)
	mux.HandleFunc("POST /api/objects/{id}/models", rt.Bim.Upload)
	mux.HandleFunc("GET /api/objects/{id}/models/{modelID}/file", rt.Bim.Stream)
	mux.HandleFunc("PATCH /api/objects/{id}/models/{modelID}/visibility", rt.Bim.SetVisibility)
	mux.HandleFunc("GET /api/objects/{id}/models/{modelID}/tree", rt.Bim.GetTree)
	mux.HandleFunc("POST /api/objects/{id}/models/{modelID}/tree", rt.Bim.GenerateTree)
	mux.HandleFunc("PUT /api/objects/{id}/models/{modelID}/tree", rt.Bim.SaveTree)

	mux.HandleFunc("GET /api/objects/{id}/photos/{mediaID}/comments", rt.Comments.ListPhotoComments)
	mux.HandleFunc("POST /api/objects/{id}/photos/{mediaID}/comments", rt.Comments.CreatePhotoComment)
	mux.HandleFunc("GET /api/objects/{id}/models/{modelID}/comments", rt.Comments.ListModelComments)
	mux.HandleFunc("POST /api/objects/{id}/models/{modelID}/comments", rt.Comments.CreateModelComment)
	mux.HandleFunc("DELETE /api/comments/{id}", rt.Comments.DeleteComment)
	mux.HandleFunc("PATCH /api/comments/{id}/visibility", rt.Comments.SetVisibility)

	mux.HandleFunc("GET /api/items", rt.Catalog.ListItems)
	mux.HandleFunc("POST /api/items", rt.Catalog.CreateItem)
	mux.HandleFunc("GET /api/items/{id}", rt.Catalog.GetItem)
	mux.HandleFunc("PATCH /api/items/{id}", rt.Catalog.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", rt.Catalog.DeleteItem)
	mux.HandleFunc("GET /api/items/{id}/download", rt.Catalog.Download)
	mux.HandleFunc("POST /api/items/{id}/purchases", rt.Catalog.Purchase)

	mux.HandleFunc("GET /api/portfolio", rt.Portfolio.ListPortfolio)
	mux.HandleFunc("POST /api/portfolio", rt.Portfolio.CreatePortfolioItem)
	mux.HandleFunc("GET /api/portfolio/{id}/file", rt.Portfolio.Stream)
	mux.HandleFunc("DELETE /api/portfolio/{id}", rt.Portfolio.DeletePortfolioItem)
}
