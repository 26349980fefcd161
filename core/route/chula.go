package route

import "github.com/v2xlab/obu/core/model"

// ChulaRouteName is the name of the built-in campus loop.
const ChulaRouteName = "chula"

// ChulaRoute returns a closed loop around Chulalongkorn University, Bangkok.
func ChulaRoute() []model.Waypoint {
	return []model.Waypoint{
		{Latitude: 13.738044, Longitude: 100.529944, Color: model.ColorRed},
		{Latitude: 13.738612, Longitude: 100.530481, Color: model.ColorRed},
		{Latitude: 13.739187, Longitude: 100.531023, Color: model.ColorRed},
		{Latitude: 13.739754, Longitude: 100.531562, Color: model.ColorYellow},
		{Latitude: 13.740326, Longitude: 100.532105, Color: model.ColorYellow},
		{Latitude: 13.740891, Longitude: 100.532644, Color: model.ColorGreen},
		{Latitude: 13.741402, Longitude: 100.532017, Color: model.ColorGreen},
		{Latitude: 13.741913, Longitude: 100.531388, Color: model.ColorGreen},
		{Latitude: 13.742421, Longitude: 100.530759, Color: model.ColorBlue},
		{Latitude: 13.741862, Longitude: 100.530214, Color: model.ColorBlue},
		{Latitude: 13.741298, Longitude: 100.529671, Color: model.ColorBlue},
		{Latitude: 13.740735, Longitude: 100.529130, Color: model.ColorViolet},
		{Latitude: 13.740169, Longitude: 100.528588, Color: model.ColorViolet},
		{Latitude: 13.739601, Longitude: 100.528047, Color: model.ColorViolet},
		{Latitude: 13.739082, Longitude: 100.528676, Color: model.ColorNone},
		{Latitude: 13.738563, Longitude: 100.529310, Color: model.ColorNone},
	}
}
