package assets

import "github.com/spaghettifunk/posecreator/engine/resources"

type Loader interface {
	Load(path string, assetType resources.ResourceType, params interface{}) (*resources.Resource, error) // resource Data holds the type specific payload
}
