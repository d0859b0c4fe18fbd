// Command seed loads the baseline reference data into an empty database
// and drops the Redis reference keys so the API serves the fresh rows.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enspm-hub/hub-backend/config"
	"github.com/enspm-hub/hub-backend/internal/bootstrap"
	refscache "github.com/enspm-hub/hub-backend/internal/references/cache"
	"github.com/enspm-hub/hub-backend/internal/references/domain"
	"github.com/enspm-hub/hub-backend/internal/references/repository"
)

func main() {
	log.SetFlags(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := bootstrap.OpenDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := seed(ctx, pool); err != nil {
		log.Fatalf("seed: %v", err)
	}

	if rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis); err != nil {
		log.Printf("redis unavailable, cache not cleared: %v", err)
	} else {
		refscache.New(rdb).Clear(ctx)
		_ = rdb.Close()
	}

	log.Println("reference data seeded")
}

func str(s string) *string { return &s }

func isEmpty(ctx context.Context, pool *pgxpool.Pool, table string) (bool, error) {
	var n int
	if err := pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// seedCollection inserts rows only when the table is still empty, so the
// command can run repeatedly without duplicating data.
func seedCollection[T any](ctx context.Context, pool *pgxpool.Pool, col *repository.Collection[T], rows []T) error {
	empty, err := isEmpty(ctx, pool, col.Table())
	if err != nil {
		return err
	}
	if !empty {
		log.Printf("%s already populated, skipping", col.Table())
		return nil
	}
	for i := range rows {
		if _, err := col.Create(ctx, pool, &rows[i]); err != nil {
			return fmt.Errorf("%s: %w", col.Table(), err)
		}
	}
	log.Printf("%s: %d rows", col.Table(), len(rows))
	return nil
}

func active(ordre int) domain.Common {
	return domain.Common{EstActif: true, OrdreAffichage: ordre}
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	repo := repository.NewRepository()

	var annees []domain.AnneePromotion
	for year := 2012; year <= time.Now().Year(); year++ {
		annees = append(annees, domain.AnneePromotion{
			Common:  active(0),
			Annee:   year,
			Libelle: fmt.Sprintf("Promotion %d", year),
		})
	}
	if err := seedCollection(ctx, pool, &repo.Annees, annees); err != nil {
		return err
	}

	domaines := []domain.Domaine{
		{Common: active(1), Nom: "Génie Informatique", Code: "GI"},
		{Common: active(2), Nom: "Génie Civil et Architecture", Code: "GCA"},
		{Common: active(3), Nom: "Génie Électrique", Code: "GE"},
		{Common: active(4), Nom: "Génie Mécanique", Code: "GM"},
		{Common: active(5), Nom: "Génie des Procédés", Code: "GP"},
		{Common: active(6), Nom: "Génie Textile et Cuir", Code: "GTC"},
		{Common: active(7), Nom: "Météorologie, Climatologie, Hydrologie", Code: "MCH"},
	}
	if err := seedCollection(ctx, pool, &repo.Domaines, domaines); err != nil {
		return err
	}

	inserted, err := repo.Domaines.List(ctx, pool, true)
	if err != nil {
		return err
	}
	byCode := map[string]domain.Domaine{}
	for _, d := range inserted {
		byCode[d.Code] = d
	}

	var filieres []domain.Filiere
	if gi, ok := byCode["GI"]; ok {
		filieres = append(filieres,
			domain.Filiere{Common: active(1), Nom: "Systèmes et Réseaux", Code: "SR", DomaineID: gi.ID},
			domain.Filiere{Common: active(2), Nom: "Génie Logiciel", Code: "GL", DomaineID: gi.ID},
			domain.Filiere{Common: active(3), Nom: "Sécurité Informatique", Code: "SI", DomaineID: gi.ID},
		)
	}
	if ge, ok := byCode["GE"]; ok {
		filieres = append(filieres,
			domain.Filiere{Common: active(1), Nom: "Électrotechnique", Code: "ET", DomaineID: ge.ID},
			domain.Filiere{Common: active(2), Nom: "Énergies Renouvelables", Code: "ER", DomaineID: ge.ID},
		)
	}
	if err := seedCollection(ctx, pool, &repo.Filieres, filieres); err != nil {
		return err
	}

	secteurs := []domain.SecteurActivite{
		{Common: active(1), Nom: "Technologies de l'information", Code: "TIC"},
		{Common: active(2), Nom: "Bâtiment et travaux publics", Code: "BTP"},
		{Common: active(3), Nom: "Énergie", Code: "ENE"},
		{Common: active(4), Nom: "Industrie", Code: "IND"},
		{Common: active(5), Nom: "Éducation et recherche", Code: "EDU"},
		{Common: active(6), Nom: "Administration publique", Code: "ADM"},
	}
	if err := seedCollection(ctx, pool, &repo.Secteurs, secteurs); err != nil {
		return err
	}

	postes := []domain.Poste{
		{Common: active(1), Intitule: "Ingénieur d'études"},
		{Common: active(2), Intitule: "Chef de projet"},
		{Common: active(3), Intitule: "Directeur technique"},
		{Common: active(4), Intitule: "Consultant"},
		{Common: active(5), Intitule: "Enseignant-chercheur"},
	}
	if err := seedCollection(ctx, pool, &repo.Postes, postes); err != nil {
		return err
	}

	devises := []domain.Devise{
		{Common: active(1), Code: "XAF", Nom: "Franc CFA (BEAC)", Symbole: str("FCFA")},
		{Common: active(2), Code: "EUR", Nom: "Euro", Symbole: str("€")},
		{Common: active(3), Code: "USD", Nom: "Dollar américain", Symbole: str("$")},
	}
	if err := seedCollection(ctx, pool, &repo.Devises, devises); err != nil {
		return err
	}

	titres := []domain.TitreHonorifique{
		{Common: active(1), Libelle: "Monsieur", Abreviation: str("M.")},
		{Common: active(2), Libelle: "Madame", Abreviation: str("Mme")},
		{Common: active(3), Libelle: "Docteur", Abreviation: str("Dr")},
		{Common: active(4), Libelle: "Professeur", Abreviation: str("Pr")},
	}
	if err := seedCollection(ctx, pool, &repo.Titres, titres); err != nil {
		return err
	}

	reseaux := []domain.ReseauSocial{
		{Common: active(1), Nom: "LinkedIn", URLBase: str("https://www.linkedin.com/in/")},
		{Common: active(2), Nom: "GitHub", URLBase: str("https://github.com/")},
		{Common: active(3), Nom: "X", URLBase: str("https://x.com/")},
		{Common: active(4), Nom: "Facebook", URLBase: str("https://www.facebook.com/")},
	}
	return seedCollection(ctx, pool, &repo.Reseaux, reseaux)
}
