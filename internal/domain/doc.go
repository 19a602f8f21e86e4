// Package domain models the run parameters of the GFS plotting service:
// regions, model cycles, plot jobs and the images they produce.
//
// # Data Source
//
// Input fields come from NCEP Global Forecast System output on the 0.5°
// global grid, converted from GRIB2 to NetCDF with NCL's naming scheme
// (e.g. TMP_P0_L100_GLL0 for isobaric temperature). Each cycle has two files
// in the data directory:
//
//	analysis_gfs_4_YYYYMMDD_HH00_000.nc   analysis, fields are [lev,] lat, lon
//	GFS_forecast_YYYYMMDD_HH.nc           forecast, fields are time, [lev,] lat, lon
//
// Position i along the forecast file's time dimension holds forecast hour
// fore[i], where fore comes from the namelist (3 to 72 by 3 when absent).
//
// # Domain Table
//
// The domain table maps region names to bounding boxes, one per line:
//
//	WA: 25.0, -20.0, 0.0, 25.0
//	EA: 20.0, 20.0, -15.0, 55.0
//
// Corners may be listed in any order. A box given on the command line that
// matches no table entry is plotted under the region name "unnamedregion".
//
// # Namelist
//
// The namelist drives a dispatch run:
//
//	init: 2019010100, 2019010112
//	m_lev_vars: theta 850 700, pv 300
//	s_lev_vars: CAPE_CIN, mslp
//	region: WA, EA
//	fore: 3, 6, 9, 12
//
// Each multi-level product is expanded once per listed level.
//
// # Output Naming
//
//	GFSanalysis_<region>_<init>_<tag>.png
//	GFSforecast_<region>_<valid>_<tag>_<init>_<fff>.png
//
// Images land in <image root>/GFS/<region>/<init>/<product dir>, where the
// product directory is the product key, suffixed with _<level> for
// multi-level products.
package domain
