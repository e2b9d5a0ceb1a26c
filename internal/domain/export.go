package domain

// JournalRow is a single row of the mileage journal export: one finished trip,
// flattened with its vehicle registration. Optional numeric fields are empty
// strings so rows serialize directly to CSV without nil checks in the handler.
type JournalRow struct {
	Year         int    `json:"year"`
	VehicleReg   string `json:"vehicle_reg"`
	Date         string `json:"date"` // "2006-01-02" formatted start date
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
	StartOdoKm   string `json:"start_odometer_km"`
	EndOdoKm     string `json:"end_odometer_km"`
	DistanceKm   string `json:"distance_km"`
	Purpose      string `json:"purpose"`
	DriverName   string `json:"driver_name"`
	Business     bool   `json:"business"`
}

// JournalFilter narrows the export to one vehicle and/or calendar year.
type JournalFilter struct {
	VehicleReg string
	Year       int // 0 = all years
}
