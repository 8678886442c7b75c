package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "StrainMap Phylogenetics Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the StrainMap outbreak phylogenetics API!"
	SERVICE_DESCRIPTION ServiceInfo = "Converts clinical genomic variant records into SNP distance matrices, neighbor-joining trees and consensus genomes."

	SERVICE_ARTIFACT    ServiceInfo = "strainmap"
	SERVICE_VERSION     ServiceInfo = "0.1.0"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.strainmap:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
