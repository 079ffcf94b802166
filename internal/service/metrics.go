package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemDownloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_item_downloads_total",
		Help: "Catalog item downloads that passed the entitlement gate.",
	})

	uploadedBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_uploaded_bytes_total",
		Help: "Bytes written to the blob store by upload kind.",
	}, []string{"kind"})

	bimTreeGenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_bim_tree_generations_total",
		Help: "BIM parameter tree generations by outcome.",
	}, []string{"outcome"})
)
