package adapters

import (
	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/models/store"
)

func MapSyncRunDomainToStore(run domain.SyncRun) store.SyncRun {
	return store.SyncRun{
		ID:         run.ID,
		Provider:   run.Provider,
		Source:     run.Source,
		Location:   run.Location,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		SKUsTotal:  run.SKUsTotal,
		SKUsPriced: run.SKUsPriced,
		WriteBack:  run.WriteBack,
		Error:      run.Error,
	}
}

func MapSyncRunStoreToDomain(run store.SyncRun) domain.SyncRun {
	return domain.SyncRun{
		ID:         run.ID,
		Provider:   run.Provider,
		Source:     run.Source,
		Location:   run.Location,
		Status:     domain.SyncStatus(run.Status),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		SKUsTotal:  run.SKUsTotal,
		SKUsPriced: run.SKUsPriced,
		WriteBack:  run.WriteBack,
		Error:      run.Error,
	}
}

func MapSyncRunDomainToApi(run domain.SyncRun) api.SyncRun {
	return api.SyncRun{
		ID:         run.ID,
		Provider:   run.Provider,
		Source:     run.Source,
		Location:   run.Location,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		SKUsTotal:  run.SKUsTotal,
		SKUsPriced: run.SKUsPriced,
		WriteBack:  run.WriteBack,
		Error:      run.Error,
	}
}

func MapPricePointStoreToDomain(rec store.PriceRecord) domain.PricePoint {
	return domain.PricePoint{
		RunID:        rec.RunID,
		SKU:          rec.SKU,
		PricePerHour: rec.PricePerHour,
		ObservedAt:   rec.ObservedAt,
	}
}

func MapPricePointDomainToApi(p domain.PricePoint) api.PricePoint {
	return api.PricePoint{
		RunID:        p.RunID,
		SKU:          p.SKU,
		PricePerHour: p.PricePerHour,
		ObservedAt:   p.ObservedAt,
	}
}
