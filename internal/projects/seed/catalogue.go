// Package seed loads the default CTeI product type catalogue.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// Catalogue is the default set of product types, keyed by code.
var Catalogue = []domain.NewProductType{
	{Code: "ARTICULO_CIENTIFICO", Description: "Artículo científico publicado en revista indexada", Quality: "Alto", Category: "Publicaciones Científicas"},
	{Code: "LIBRO", Description: "Libro o capítulo de libro", Quality: "Alto", Category: "Publicaciones Científicas"},
	{Code: "PATENTE", Description: "Patente registrada", Quality: "Muy Alto", Category: "Propiedad Intelectual"},
	{Code: "SOFTWARE", Description: "Software o aplicación desarrollada", Quality: "Alto", Category: "Productos Tecnológicos"},
	{Code: "PROTOTIPO", Description: "Prototipo funcional", Quality: "Medio", Category: "Productos Tecnológicos"},
	{Code: "MODELO_MATEMATICO", Description: "Modelo matemático o algoritmo", Quality: "Medio", Category: "Productos Tecnológicos"},
	{Code: "BASE_DATOS", Description: "Base de datos especializada", Quality: "Medio", Category: "Productos Tecnológicos"},
	{Code: "CONSULTORIA", Description: "Servicio de consultoría especializada", Quality: "Medio", Category: "Servicios"},
	{Code: "CAPACITACION", Description: "Programa de capacitación o curso", Quality: "Bajo", Category: "Servicios"},
	{Code: "INFORME_TECNICO", Description: "Informe técnico o de investigación", Quality: "Bajo", Category: "Documentos Técnicos"},
	{Code: "GUIA_METODOLOGICA", Description: "Guía metodológica o manual", Quality: "Bajo", Category: "Documentos Técnicos"},
	{Code: "ESTUDIO_PILOTO", Description: "Estudio piloto o de viabilidad", Quality: "Medio", Category: "Investigación Aplicada"},
	{Code: "DIAGNOSTICO_TECNOLOGICO", Description: "Diagnóstico tecnológico sectorial", Quality: "Medio", Category: "Investigación Aplicada"},
	{Code: "MAPA_TECNOLOGICO", Description: "Mapa tecnológico o de capacidades", Quality: "Alto", Category: "Investigación Aplicada"},
	{Code: "INNOVACION_PROCESO", Description: "Innovación en procesos productivos", Quality: "Alto", Category: "Innovación Empresarial"},
	{Code: "INNOVACION_PRODUCTO", Description: "Innovación en productos", Quality: "Alto", Category: "Innovación Empresarial"},
	{Code: "TRANSFERENCIA_TECNOLOGICA", Description: "Proyecto de transferencia tecnológica", Quality: "Muy Alto", Category: "Innovación Empresarial"},
	{Code: "DESARROLLO_PRODUCTIVO", Description: "Desarrollo productivo regional", Quality: "Alto", Category: "Desarrollo Regional"},
	{Code: "CLUSTER_TECNOLOGICO", Description: "Formación de cluster tecnológico", Quality: "Muy Alto", Category: "Desarrollo Regional"},
	{Code: "CENTRO_INNOVACION", Description: "Centro de innovación creado", Quality: "Muy Alto", Category: "Infraestructura"},
}

type Upserter interface {
	Upsert(ctx context.Context, in domain.NewProductType) (*domain.ProductType, error)
}

// Run upserts every catalogue entry. Running it twice leaves one row per code.
func Run(ctx context.Context, store Upserter) (int, error) {
	log := zerolog.Ctx(ctx)
	for i, pt := range Catalogue {
		if _, err := store.Upsert(ctx, pt); err != nil {
			return i, fmt.Errorf("upsert product type %s: %w", pt.Code, err)
		}
		log.Debug().Str("code", pt.Code).Msg("product type upserted")
	}
	return len(Catalogue), nil
}
