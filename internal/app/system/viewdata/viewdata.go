// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the header and page titles.
const SiteName = "StudyHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
//	type listData struct {
//	    viewdata.BaseVM
//	    Groups []groupRow
//	}
type BaseVM struct {
	SiteName string

	IsLoggedIn bool
	UserName   string

	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string

	// Notices queued by the previous request (join/leave/delete results,
	// access rejections).
	Notices []flash.Notice
}

// NewBaseVM builds the common page fields and consumes pending notices.
// fl may be nil for pages that never show notices.
func NewBaseVM(w http.ResponseWriter, r *http.Request, fl *flash.Flasher, title, backDefault string) BaseVM {
	name, signedIn := auth.Identity(r)
	return BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Notices:     fl.Pop(w, r),
	}
}
