package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/teamtracker/internal/db"
	"gorm.io/gorm"
)

// KML 文件结构定义，仅解析导入所需的节点
type kmlFile struct {
	XMLName  xml.Name    `xml:"kml"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlFolder struct {
	Name       string         `xml:"name"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name    string      `xml:"name"`
	Point   *kmlPoint   `xml:"Point"`
	Polygon *kmlPolygon `xml:"Polygon"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	OuterBoundaryIs struct {
		LinearRing struct {
			Coordinates string `xml:"coordinates"`
		} `xml:"LinearRing"`
	} `xml:"outerBoundaryIs"`
}

// SeedFromKML 在地点表为空时从 KML 名录文件导入地点
// 多边形取第一组坐标作为参考点；名录已有数据时跳过，保证只播种一次
func (s *LocationService) SeedFromKML(ctx context.Context, path string) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Location{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read kml file: %w", err)
	}

	var doc kmlFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse kml file: %w", err)
	}

	locations := collectPlacemarks(doc.Document.Placemarks)
	for _, folder := range doc.Document.Folders {
		locations = append(locations, collectPlacemarks(folder.Placemarks)...)
	}
	if len(locations) == 0 {
		return 0, nil
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&locations).Error
	}); err != nil {
		return 0, fmt.Errorf("seed locations: %w", err)
	}

	return len(locations), nil
}

func collectPlacemarks(placemarks []kmlPlacemark) []db.Location {
	locations := make([]db.Location, 0, len(placemarks))
	for _, p := range placemarks {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}

		if p.Point != nil {
			if lat, lon, ok := parseCoordinates(p.Point.Coordinates); ok {
				locations = append(locations, db.Location{Name: strings.TrimSpace(p.Name), Latitude: lat, Longitude: lon})
			}
			continue
		}

		if p.Polygon != nil {
			pairs := strings.Fields(strings.TrimSpace(p.Polygon.OuterBoundaryIs.LinearRing.Coordinates))
			if len(pairs) == 0 {
				continue
			}
			if lat, lon, ok := parseCoordinates(pairs[0]); ok {
				locations = append(locations, db.Location{Name: strings.TrimSpace(p.Name), Latitude: lat, Longitude: lon})
			}
		}
	}
	return locations
}

// parseCoordinates 解析 KML 的 "经度,纬度[,海拔]" 坐标串
func parseCoordinates(raw string) (lat, lon float64, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) < 2 {
		return 0, 0, false
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
