package app

import (
	"gorm.io/gorm"

	"github.com/masterfoodbrokers/crm-backend/internal/platform/logger"
	"github.com/masterfoodbrokers/crm-backend/internal/repos"
)

type Repos struct {
	User             repos.UserRepo
	UserToken        repos.UserTokenRepo
	LayoutPreference repos.LayoutPreferenceRepo
	LayoutRevision   repos.LayoutRevisionRepo
	Organization     repos.OrganizationRepo
	Contact          repos.ContactRepo
	Interaction      repos.InteractionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("wiring repos")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		UserToken:        repos.NewUserTokenRepo(db, log),
		LayoutPreference: repos.NewLayoutPreferenceRepo(db, log),
		LayoutRevision:   repos.NewLayoutRevisionRepo(db, log),
		Organization:     repos.NewOrganizationRepo(db, log),
		Contact:          repos.NewContactRepo(db, log),
		Interaction:      repos.NewInteractionRepo(db, log),
	}
}
