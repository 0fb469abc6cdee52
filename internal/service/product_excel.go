package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const productSheet = "Products"

// ExportExcel renders the registry with the derived storage columns into
// an xlsx workbook.
func (s *productService) ExportExcel(ctx context.Context) ([]byte, error) {
	names, err := s.productRepo.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	snapshot, err := s.storage.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(productSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Name", "Code", "In Storage", "About To Transfer"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(productSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	for _, name := range names {
		product, findErr := s.productRepo.FindByName(ctx, name)
		if findErr != nil {
			continue
		}
		info := snapshot[name]
		values := []interface{}{product.Name, product.Code, info.InStorage, info.AboutToTransfer}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(productSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportProductsFile parses an uploaded xlsx and feeds its rows through
// the bulk import. Expected columns: name, code, then optional cost
// center, unit and note. The first row is treated as a header.
func (s *productService) ImportProductsFile(ctx context.Context, file []byte, userID string) (ImportResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(file))
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var requests []CreateProductRequest
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		req := CreateProductRequest{}
		if len(row) > 0 {
			req.Name = row[0]
		}
		if len(row) > 1 {
			req.Code = row[1]
		}
		if len(row) > 2 {
			req.CostCenter = row[2]
		}
		if len(row) > 3 {
			req.Unit = row[3]
		}
		if len(row) > 4 {
			req.Note = row[4]
		}
		requests = append(requests, req)
	}

	return s.ImportProducts(ctx, requests, userID)
}
